// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/regdash/internal/app/features/errors"
	"github.com/dalemusser/regdash/internal/app/system/auditlog"
	"github.com/dalemusser/regdash/internal/app/system/paging"
	"github.com/dalemusser/regdash/internal/domain/models"
	"go.uber.org/zap"
)

// Lister is the registrant backend as seen by the dashboard.
// *registrants.Client satisfies it.
type Lister interface {
	List(ctx context.Context, q models.ListQuery) (models.ListPage, error)
	All(ctx context.Context, course models.Course) ([]models.Registrant, error)
}

// TodayCounter reports today's registrations from cached statistics.
// *snapshot.Store satisfies it.
type TodayCounter interface {
	TodayCount() (int, bool)
}

// Options carries the configured presentation settings.
type Options struct {
	Courses     models.CourseNames
	Location    *time.Location
	PageSize    int
	SearchDelay time.Duration
	ExportURL   string // when set, export redirects here
	HideCourse  bool   // backend has no course field: no selector, no Kurs column
}

type Handler struct {
	Users  Lister
	Today  TodayCounter
	ErrLog *uierrors.ErrorLogger
	Audit  *auditlog.Logger
	Log    *zap.Logger

	opt Options
	now func() time.Time
}

func NewHandler(users Lister, today TodayCounter, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, opt Options, logger *zap.Logger) *Handler {
	if opt.Courses == nil {
		opt.Courses = models.DefaultCourseNames
	}
	if opt.Location == nil {
		opt.Location = time.Local
	}
	if !paging.Allowed(opt.PageSize) {
		opt.PageSize = paging.DefaultPageSize
	}
	if opt.SearchDelay <= 0 {
		opt.SearchDelay = 300 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Users:  users,
		Today:  today,
		ErrLog: errLog,
		Audit:  audit,
		Log:    logger,
		opt:    opt,
		now:    time.Now,
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
