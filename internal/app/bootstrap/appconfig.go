// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/regdash/internal/domain/models"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration; ports, TLS, logging level
// and request limits belong to WAFFLE's CoreConfig.
type AppConfig struct {
	// MongoDB connection configuration (sessions and audit events)
	MongoURI      string
	MongoDatabase string

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies
	SessionName   string        // Cookie name (default: regdash-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Lifetime of an admin session

	// Admin credentials. PasswordHash (bcrypt) wins over Password.
	AdminLogin        string
	AdminPassword     string
	AdminPasswordHash string

	// Registration backend
	BackendBaseURL      string
	BackendUsersPath    string // paginated list endpoint
	BackendAllUsersPath string // full set for export and statistics
	ExportFileURL       string // pre-generated spreadsheet; export redirects here when set

	// Presentation
	SiteName        string
	CourseFilter    bool               // show the course selector and Kurs column
	CourseNames     models.CourseNames // display names per course tag
	DisplayLocation *time.Location     // time zone for dates and statistics buckets
	DefaultPageSize int
	SearchDebounce  time.Duration

	// Timeouts
	TimeoutList   time.Duration
	TimeoutExport time.Duration
	TimeoutStats  time.Duration

	// Statistics snapshot
	StatsCacheTTL   time.Duration
	RefreshDebounce time.Duration

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth  string
	AuditLogAdmin string
}
