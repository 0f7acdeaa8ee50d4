// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/regdash/internal/app/resources"
	"github.com/dalemusser/regdash/internal/app/system/timeouts"
	"github.com/dalemusser/regdash/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It loads
// shared templates, applies configured timeouts, starts the expired-session
// sweeper and warms the statistics snapshot in the background.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()
	viewdata.SetSiteName(appCfg.SiteName)

	timeouts.Configure(timeouts.Config{
		List:   appCfg.TimeoutList,
		Stats:  appCfg.TimeoutStats,
		Export: appCfg.TimeoutExport,
	})

	if deps.SessionCleanup != nil {
		deps.SessionCleanup.Start()
	}

	// Warm-up only; a failure here is retried on the first statistics view.
	if deps.Snapshots != nil {
		deps.Snapshots.ScheduleRefresh()
	}

	logger.Info("regdash started",
		zap.String("backend", appCfg.BackendBaseURL),
		zap.String("timezone", appCfg.DisplayLocation.String()),
		zap.Bool("course_filter", appCfg.CourseFilter))
	return nil
}
