// Package timeouts provides centralized timeout values for handler operations.
//
// Handlers wrap every call to the registrations backend and to MongoDB in a
// context derived from one of these tiers. Values can be overridden at
// startup with Configure; otherwise the defaults apply.
//
// Tiers:
//   - Ping: health checks and connectivity verification
//   - Short: single-document session and audit reads/writes
//   - List: one page of the registrant list
//   - Stats: the full-set fetch behind the statistics page
//   - Export: the full-set fetch behind the xlsx download
package timeouts

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultList   = 8 * time.Second
	DefaultStats  = 30 * time.Second
	DefaultExport = 30 * time.Second
)

// mu protects all timeout values from concurrent access.
var mu sync.RWMutex

var (
	ping   = DefaultPing
	short  = DefaultShort
	list   = DefaultList
	stats  = DefaultStats
	export = DefaultExport
)

// Ping returns the timeout for health checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the timeout for simple store operations like session lookups.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// List returns the timeout for fetching one page of registrants.
func List() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return list
}

// Stats returns the timeout for the statistics fetch.
func Stats() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return stats
}

// Export returns the timeout for the full export fetch.
func Export() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return export
}

// Config holds timeout configuration values.
// Zero values are ignored (defaults are kept).
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	List   time.Duration
	Stats  time.Duration
	Export time.Duration
}

// Configure sets custom timeout values. Zero values in the config are ignored,
// keeping the current (or default) values. Call it during startup before
// handlers are registered.
//
//	timeouts.Configure(timeouts.Config{
//	    List:   10 * time.Second,
//	    Export: time.Minute,
//	})
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.List > 0 {
		list = cfg.List
	}
	if cfg.Stats > 0 {
		stats = cfg.Stats
	}
	if cfg.Export > 0 {
		export = cfg.Export
	}
}

// Reset restores all timeouts to their default values.
// Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	short = DefaultShort
	list = DefaultList
	stats = DefaultStats
	export = DefaultExport
}

// Current returns the current timeout configuration as a Config struct.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{
		Ping:   ping,
		Short:  short,
		List:   list,
		Stats:  stats,
		Export: export,
	}
}

// WithTimeout creates a context with timeout and returns a cancel function that
// logs a warning if the context was canceled due to deadline exceeded.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Export(), h.Log, "registrant export")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
