// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"

	auditfeature "github.com/dalemusser/regdash/internal/app/features/auditlog"
	dashboardfeature "github.com/dalemusser/regdash/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/regdash/internal/app/features/errors"
	healthfeature "github.com/dalemusser/regdash/internal/app/features/health"
	loginfeature "github.com/dalemusser/regdash/internal/app/features/login"
	logoutfeature "github.com/dalemusser/regdash/internal/app/features/logout"
	statisticsfeature "github.com/dalemusser/regdash/internal/app/features/statistics"
	auditstore "github.com/dalemusser/regdash/internal/app/store/audit"
	"github.com/dalemusser/regdash/internal/app/system/auditlog"
	"github.com/dalemusser/regdash/internal/app/system/auth"
	"github.com/dalemusser/regdash/internal/app/system/charts"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// regdash initializes the template engine, applies CSRF and session
// middleware, and mounts the login page at "/" with the registrant list,
// statistics and the audit log under "/admin".
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Audit logger writes to MongoDB and/or zap per category.
	auditEvents := auditstore.New(deps.MongoDatabase)
	auditLog := auditlog.New(auditEvents, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(
		appCfg.SessionKey,
		appCfg.SessionName,
		appCfg.SessionDomain,
		appCfg.SessionMaxAge,
		secure,
		deps.Sessions,
		logger,
	)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	sessionMgr.OnReject = func(r *http.Request, reason string) {
		auditLog.SessionRejected(r.Context(), r, reason)
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	r := chi.NewRouter()

	// Set before any Mount so sub-routers inherit it.
	r.NotFound(errorsHandler.NotFound)

	if !secure {
		r.Use(markPlaintext)
	}
	csrfKey := sha256.Sum256([]byte(appCfg.SessionKey))
	r.Use(csrf.Protect(csrfKey[:],
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(errorsHandler.Forbidden)),
	))

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Registrants, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Authentication
	creds := auth.Credentials{
		Login:        appCfg.AdminLogin,
		Password:     appCfg.AdminPassword,
		PasswordHash: appCfg.AdminPasswordHash,
	}
	loginHandler := loginfeature.NewHandler(sessionMgr, creds, deps.LoginLimiter, errLog, auditLog, logger)
	r.Mount("/", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Error pages
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Admin area
	r.Get("/admin", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, loginfeature.DefaultLanding, http.StatusSeeOther)
	})

	dashboardHandler := dashboardfeature.NewHandler(deps.Registrants, deps.Snapshots, errLog, auditLog, dashboardfeature.Options{
		Courses:     appCfg.CourseNames,
		Location:    appCfg.DisplayLocation,
		PageSize:    appCfg.DefaultPageSize,
		SearchDelay: appCfg.SearchDebounce,
		ExportURL:   appCfg.ExportFileURL,
		HideCourse:  !appCfg.CourseFilter,
	}, logger)
	r.Mount("/admin/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	renderer := charts.NewRenderer(charts.WithCache(charts.NewCache(appCfg.StatsCacheTTL)))
	statsHandler := statisticsfeature.NewHandler(deps.Snapshots, renderer, errLog, auditLog, logger)
	r.Mount("/admin/statistics", statisticsfeature.Routes(statsHandler, sessionMgr))

	auditHandler := auditfeature.NewHandler(auditEvents, errLog, appCfg.DisplayLocation, logger)
	r.Mount("/admin/audit", auditfeature.Routes(auditHandler, sessionMgr))

	return r, nil
}

// markPlaintext tells gorilla/csrf the request arrived over plain HTTP so
// its origin check does not demand https outside production.
func markPlaintext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}
