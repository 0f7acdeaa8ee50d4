// internal/app/features/statistics/handler.go
package statistics

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/regdash/internal/app/features/errors"
	"github.com/dalemusser/regdash/internal/app/system/auditlog"
	"github.com/dalemusser/regdash/internal/app/system/charts"
	"github.com/dalemusser/regdash/internal/app/system/snapshot"
	"go.uber.org/zap"
)

// Source provides the cached registrant snapshot.
// *snapshot.Store satisfies it.
type Source interface {
	Get(ctx context.Context) (*snapshot.Snapshot, error)
	Peek() (*snapshot.Snapshot, bool)
	ScheduleRefresh()
}

type Handler struct {
	Snapshots Source
	Charts    *charts.Renderer
	ErrLog    *uierrors.ErrorLogger
	Audit     *auditlog.Logger
	Log       *zap.Logger
}

func NewHandler(src Source, renderer *charts.Renderer, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	if renderer == nil {
		renderer = charts.NewRenderer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Snapshots: src,
		Charts:    renderer,
		ErrLog:    errLog,
		Audit:     audit,
		Log:       logger,
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
