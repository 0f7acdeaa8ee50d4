// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"
	"time"

	uierrors "github.com/dalemusser/regdash/internal/app/features/errors"
	"github.com/dalemusser/regdash/internal/app/store/audit"
	"go.uber.org/zap"
)

// EventQuerier reads audit events. *audit.Store satisfies it.
type EventQuerier interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
	CountByFilter(ctx context.Context, filter audit.QueryFilter) (int64, error)
	GetFailedLogins(ctx context.Context, since time.Time, limit int64) ([]audit.Event, error)
}

type Handler struct {
	Events EventQuerier
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger

	loc *time.Location
	now func() time.Time
}

// NewHandler constructs the audit log viewer. Timestamps and date filters
// use loc.
func NewHandler(events EventQuerier, errLog *uierrors.ErrorLogger, loc *time.Location, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.Local
	}
	if errLog == nil {
		errLog = uierrors.NewErrorLogger(logger)
	}
	return &Handler{
		Events: events,
		ErrLog: errLog,
		Log:    logger,
		loc:    loc,
		now:    time.Now,
	}
}
