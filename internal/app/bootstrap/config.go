// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/regdash/internal/app/system/auditlog"
	"github.com/dalemusser/regdash/internal/app/system/paging"
	"github.com/dalemusser/regdash/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for regdash.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, backend_base_url, etc.
//   - Environment variables: REGDASH_MONGO_URI, REGDASH_BACKEND_BASE_URL, etc.
//   - Command-line flags: --mongo_uri, --backend_base_url, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "regdash", Desc: "MongoDB database name"},
	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "regdash-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Admin session lifetime (e.g., 8h, 24h)"},

	// Admin credentials
	{Name: "admin_login", Default: "", Desc: "Admin login name"},
	{Name: "admin_password", Default: "", Desc: "Admin password (plaintext; prefer admin_password_hash)"},
	{Name: "admin_password_hash", Default: "", Desc: "bcrypt hash of the admin password"},

	// Registration backend
	{Name: "backend_base_url", Default: "http://localhost:8000", Desc: "Base URL of the registration backend"},
	{Name: "backend_users_path", Default: "/user", Desc: "Paginated registrant list path"},
	{Name: "backend_all_users_path", Default: "/user", Desc: "Full registrant set path (export, statistics)"},
	{Name: "export_file_url", Default: "", Desc: "Pre-generated spreadsheet URL; export redirects here when set"},

	// Presentation
	{Name: "site_name", Default: models.DefaultSiteName, Desc: "Title shown in the header"},
	{Name: "course_filter", Default: true, Desc: "Show the course selector and Kurs column"},
	{Name: "course_names", Default: "", Desc: "Course display names, e.g. 'a:Frontend,b:Backend'"},
	{Name: "display_timezone", Default: "Asia/Tashkent", Desc: "Time zone for dates and statistics"},
	{Name: "default_page_size", Default: paging.DefaultPageSize, Desc: "Default rows per page (10, 25, 50 or 100)"},
	{Name: "search_debounce", Default: "300ms", Desc: "Search box debounce delay"},

	// Timeouts
	{Name: "timeout_list", Default: "8s", Desc: "Registrant list request timeout"},
	{Name: "timeout_export", Default: "30s", Desc: "Export request timeout"},
	{Name: "timeout_stats", Default: "30s", Desc: "Statistics fetch timeout"},

	// Statistics snapshot
	{Name: "stats_cache_ttl", Default: "2m", Desc: "How long statistics are served from cache"},
	{Name: "refresh_debounce", Default: "2s", Desc: "Quiet period before a requested statistics refresh runs"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, REGDASH_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "REGDASH", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	tzName := appValues.String("display_timezone")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, AppConfig{}, fmt.Errorf("display_timezone %q: %w", tzName, err)
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),
		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		AdminLogin:        strings.TrimSpace(appValues.String("admin_login")),
		AdminPassword:     appValues.String("admin_password"),
		AdminPasswordHash: strings.TrimSpace(appValues.String("admin_password_hash")),

		BackendBaseURL:      strings.TrimSpace(appValues.String("backend_base_url")),
		BackendUsersPath:    appValues.String("backend_users_path"),
		BackendAllUsersPath: appValues.String("backend_all_users_path"),
		ExportFileURL:       strings.TrimSpace(appValues.String("export_file_url")),

		SiteName:        appValues.String("site_name"),
		CourseFilter:    appValues.Bool("course_filter"),
		CourseNames:     models.ParseCourseNames(appValues.String("course_names")),
		DisplayLocation: loc,
		DefaultPageSize: appValues.Int("default_page_size"),
		SearchDebounce:  appValues.Duration("search_debounce", 300*time.Millisecond),

		TimeoutList:   appValues.Duration("timeout_list", 8*time.Second),
		TimeoutExport: appValues.Duration("timeout_export", 30*time.Second),
		TimeoutStats:  appValues.Duration("timeout_stats", 30*time.Second),

		StatsCacheTTL:   appValues.Duration("stats_cache_ttl", 2*time.Minute),
		RefreshDebounce: appValues.Duration("refresh_debounce", 2*time.Second),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// regdash checks the MongoDB URI, the backend URL and the admin
// credentials so a misconfigured deployment fails at startup instead of on
// the first login.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateAppConfig(coreCfg.Env, appCfg, logger)
}

func validateAppConfig(env string, appCfg AppConfig, logger *zap.Logger) error {
	u, err := url.Parse(appCfg.BackendBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid backend_base_url %q", appCfg.BackendBaseURL)
	}

	if appCfg.AdminLogin == "" {
		return errors.New("admin_login is required")
	}
	if appCfg.AdminPassword == "" && appCfg.AdminPasswordHash == "" {
		return errors.New("admin_password or admin_password_hash is required")
	}

	if !paging.Allowed(appCfg.DefaultPageSize) {
		return fmt.Errorf("default_page_size must be one of %v", paging.PageSizes)
	}

	for name, mode := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_admin": appCfg.AuditLogAdmin} {
		switch mode {
		case auditlog.ModeAll, auditlog.ModeDB, auditlog.ModeLog, auditlog.ModeOff:
		default:
			return fmt.Errorf("%s must be all, db, log or off (got %q)", name, mode)
		}
	}

	if env == "prod" {
		if appCfg.SessionKey == devSessionKey || len(appCfg.SessionKey) < 32 {
			return errors.New("session_key must be a unique value of at least 32 characters in prod")
		}
		if appCfg.AdminPasswordHash == "" {
			logger.Warn("admin_password is plaintext; set admin_password_hash in production")
		}
	}
	return nil
}
