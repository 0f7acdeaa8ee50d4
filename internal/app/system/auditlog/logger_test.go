package auditlog_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dalemusser/regdash/internal/app/store/audit"
	"github.com/dalemusser/regdash/internal/app/system/auditlog"
	"github.com/dalemusser/regdash/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memRecorder struct {
	mu     sync.Mutex
	events []audit.Event
	err    error
}

func (m *memRecorder) Log(_ context.Context, e audit.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func (m *memRecorder) Events() []audit.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]audit.Event(nil), m.events...)
}

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	// These should all be no-ops, not panic
	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, req, "admin")
	logger.Logout(ctx, req, "admin")
}

func TestLogger_Modes(t *testing.T) {
	tests := []struct {
		mode      string
		wantDB    int
		wantLines int
	}{
		{auditlog.ModeAll, 1, 1},
		{auditlog.ModeDB, 1, 0},
		{auditlog.ModeLog, 0, 1},
		{auditlog.ModeOff, 0, 0},
		{"", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			rec := &memRecorder{}
			core, logs := observer.New(zap.InfoLevel)
			logger := auditlog.New(rec, zap.New(core), auditlog.Config{Auth: tt.mode, Admin: tt.mode})

			logger.LoginSuccess(context.Background(), httptest.NewRequest("POST", "/", nil), "admin")

			if got := len(rec.Events()); got != tt.wantDB {
				t.Errorf("stored events: got %d, want %d", got, tt.wantDB)
			}
			if got := logs.FilterMessage("audit event").Len(); got != tt.wantLines {
				t.Errorf("log lines: got %d, want %d", got, tt.wantLines)
			}
		})
	}
}

func TestLogger_CategoriesConfiguredSeparately(t *testing.T) {
	rec := &memRecorder{}
	logger := auditlog.New(rec, zap.NewNop(), auditlog.Config{Auth: auditlog.ModeOff, Admin: auditlog.ModeDB})
	req := httptest.NewRequest("GET", "/admin/dashboard/export.xlsx", nil)

	logger.LoginSuccess(context.Background(), req, "admin")
	logger.ExportDownloaded(context.Background(), req, "admin", "all", 42)

	events := rec.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.EventType != audit.EventExportDownloaded || e.Details["rows"] != "42" || e.Details["course"] != "all" {
		t.Errorf("unexpected event: %+v", e)
	}
}

func TestLogger_StoreErrorIsLogged(t *testing.T) {
	rec := &memRecorder{err: errors.New("down")}
	core, logs := observer.New(zap.ErrorLevel)
	logger := auditlog.New(rec, zap.New(core), auditlog.Config{Auth: auditlog.ModeDB})

	logger.LoginFailedWrongPassword(context.Background(), httptest.NewRequest("POST", "/", nil), "root")

	if logs.FilterMessage("failed to store audit event").Len() != 1 {
		t.Error("expected store failure to be logged")
	}
}

func TestLogger_LoginFailedRateLimit(t *testing.T) {
	rec := &memRecorder{}
	logger := auditlog.New(rec, nil, auditlog.Config{})

	logger.LoginFailedRateLimit(context.Background(), httptest.NewRequest("POST", "/", nil), "admin", "ip")

	events := rec.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Success || events[0].Details["limit_type"] != "ip" {
		t.Errorf("unexpected event: %+v", events[0])
	}
}

func TestLogger_WithMongo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: auditlog.ModeDB})
	logger.Logout(ctx, httptest.NewRequest("POST", "/logout", nil), "admin")

	events, err := store.GetByLogin(ctx, "admin", 10)
	if err != nil {
		t.Fatalf("GetByLogin failed: %v", err)
	}
	if len(events) != 1 || events[0].EventType != audit.EventLogout {
		t.Errorf("unexpected events: %+v", events)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.1"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.7"}, "10.0.0.2:1234", "198.51.100.7"},
		{"remote addr", nil, "192.0.2.9:5555", "192.0.2.9"},
		{"remote without port", nil, "192.0.2.9", "192.0.2.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := auditlog.ClientIP(req); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
