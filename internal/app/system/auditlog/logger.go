// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/regdash/internal/app/store/audit"
	"go.uber.org/zap"
)

// Destinations for a category.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off" // disabled
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (login, logout, rejected sessions).
	Auth string
	// Admin controls logging for admin actions (exports, statistics refreshes).
	Admin string
}

// Recorder persists audit events. *audit.Store satisfies it.
type Recorder interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger provides convenience methods for logging audit events.
// It logs to MongoDB (via Recorder) and structured logs (via zap).
type Logger struct {
	store  Recorder
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil, in which case "db"
// output is skipped.
func New(store Recorder, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// ClientIP extracts the client IP from the request, preferring the first
// X-Forwarded-For hop, then X-Real-IP, then RemoteAddr without its port.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.Login != "" {
		fields = append(fields, zap.String("login", event.Login))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	}
	if setting == "" {
		setting = ModeAll
	}
	if setting == ModeOff {
		return
	}

	if setting == ModeAll || setting == ModeLog {
		l.logToZap(event)
	}

	if (setting == ModeAll || setting == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func (l *Logger) event(r *http.Request, category, eventType, login string, success bool) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		Login:     login,
		IP:        ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, login string) {
	l.Log(ctx, l.event(r, audit.CategoryAuth, audit.EventLoginSuccess, login, true))
}

// LoginFailedWrongPassword logs a failed credential check.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, attemptedLogin string) {
	e := l.event(r, audit.CategoryAuth, audit.EventLoginFailedWrongPassword, attemptedLogin, false)
	e.FailureReason = "wrong login or password"
	l.Log(ctx, e)
}

// LoginFailedRateLimit logs a login rejected by the rate limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, attemptedLogin, limitType string) {
	e := l.event(r, audit.CategoryAuth, audit.EventLoginFailedRateLimit, attemptedLogin, false)
	e.FailureReason = "rate limit exceeded"
	e.Details = map[string]string{"limit_type": limitType}
	l.Log(ctx, e)
}

// Logout logs an admin logout.
func (l *Logger) Logout(ctx context.Context, r *http.Request, login string) {
	l.Log(ctx, l.event(r, audit.CategoryAuth, audit.EventLogout, login, true))
}

// SessionRejected logs a protected request carrying an unusable session.
func (l *Logger) SessionRejected(ctx context.Context, r *http.Request, reason string) {
	e := l.event(r, audit.CategoryAuth, audit.EventSessionRejected, "", false)
	e.FailureReason = reason
	e.Details = map[string]string{"path": r.URL.Path}
	l.Log(ctx, e)
}

// --- Admin Events ---

// ExportDownloaded logs a successful spreadsheet export.
func (l *Logger) ExportDownloaded(ctx context.Context, r *http.Request, login, course string, rows int) {
	e := l.event(r, audit.CategoryAdmin, audit.EventExportDownloaded, login, true)
	e.Details = map[string]string{
		"course": course,
		"rows":   strconv.Itoa(rows),
	}
	l.Log(ctx, e)
}

// ExportFailed logs a failed spreadsheet export.
func (l *Logger) ExportFailed(ctx context.Context, r *http.Request, login, course, reason string) {
	e := l.event(r, audit.CategoryAdmin, audit.EventExportFailed, login, false)
	e.FailureReason = reason
	e.Details = map[string]string{"course": course}
	l.Log(ctx, e)
}

// StatisticsRefresh logs a requested statistics refresh.
func (l *Logger) StatisticsRefresh(ctx context.Context, r *http.Request, login string) {
	l.Log(ctx, l.event(r, audit.CategoryAdmin, audit.EventStatisticsRefresh, login, true))
}
