// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrorLogger logs a failure with request context and renders a
// user-facing error page (or an inline fragment for HTMX requests).
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{Log: logger}
}

// LogServerError logs at error level and renders a 500 page.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log(zap.ErrorLevel, r, logMsg, err)
	render(w, r, http.StatusInternalServerError, "Xatolik", userMsg, orDefault(backURL, "/admin/dashboard"))
}

// LogBadGateway logs a failed upstream call and renders a 502 page.
func (e *ErrorLogger) LogBadGateway(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log(zap.ErrorLevel, r, logMsg, err)
	render(w, r, http.StatusBadGateway, "Xatolik", userMsg, orDefault(backURL, "/admin/dashboard"))
}

// LogBadRequest logs at warn level and renders a 400 page.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log(zap.WarnLevel, r, logMsg, err)
	render(w, r, http.StatusBadRequest, "Noto'g'ri so'rov", userMsg, orDefault(backURL, "/"))
}

func (e *ErrorLogger) log(level zapcore.Level, r *http.Request, msg string, err error) {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if ce := e.Log.Check(level, msg); ce != nil {
		ce.Write(fields...)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
