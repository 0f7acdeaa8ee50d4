// internal/app/system/workers/sessioncleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ExpiredCloser ends sessions whose expires_at has passed.
// *sessions.Store satisfies it.
type ExpiredCloser interface {
	CloseExpired(ctx context.Context) (int64, error)
}

// SessionCleanup is a background worker that closes expired admin sessions.
type SessionCleanup struct {
	sessions ExpiredCloser
	log      *zap.Logger
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSessionCleanup creates a new session cleanup worker.
//
// Parameters:
//   - sessStore: the sessions store
//   - logger: zap logger for logging
//   - interval: how often to run cleanup (e.g., 5 minutes)
func NewSessionCleanup(sessStore ExpiredCloser, logger *zap.Logger, interval time.Duration) *SessionCleanup {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SessionCleanup{
		sessions: sessStore,
		log:      logger,
		interval: interval,
		timeout:  30 * time.Second,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *SessionCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("session cleanup worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
// Safe to call more than once.
func (w *SessionCleanup) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("session cleanup worker stopped")
	})
}

// RunOnce performs a single sweep and returns the number of closed sessions.
func (w *SessionCleanup) RunOnce(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	return w.sessions.CloseExpired(ctx)
}

func (w *SessionCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.cleanup()
		}
	}
}

func (w *SessionCleanup) cleanup() {
	count, err := w.RunOnce(context.Background())
	if err != nil {
		w.log.Error("failed to close expired sessions", zap.Error(err))
		return
	}

	if count > 0 {
		w.log.Info("closed expired sessions", zap.Int64("count", count))
	}
}
