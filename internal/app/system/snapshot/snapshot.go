// Package snapshot caches the full registrant set and the aggregates
// computed from it, shared by the statistics page and the dashboard's
// "today" card.
package snapshot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/regdash/internal/app/system/debounce"
	"github.com/dalemusser/regdash/internal/app/system/stats"
	"github.com/dalemusser/regdash/internal/app/system/timeouts"
	"github.com/dalemusser/regdash/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Fetcher loads every registrant from the backend.
type Fetcher interface {
	All(ctx context.Context, course models.Course) ([]models.Registrant, error)
}

// Snapshot is one fetched record set and its aggregates.
type Snapshot struct {
	Records   []models.Registrant
	Summary   stats.Summary
	FetchedAt time.Time
}

// Options configures a Store.
type Options struct {
	TTL         time.Duration  // how long a snapshot is served without refetching
	RefreshWait time.Duration  // debounce window for ScheduleRefresh
	Location    *time.Location // bucketing time zone
	Logger      *zap.Logger
	Now         func() time.Time // for tests; defaults to time.Now
}

// Store holds the latest Snapshot.
type Store struct {
	fetch Fetcher
	ttl   time.Duration
	loc   *time.Location
	log   *zap.Logger
	now   func() time.Time

	group   singleflight.Group
	refresh *debounce.Debouncer

	// base bounds shared fetches; Close cancels it.
	base   context.Context
	cancel context.CancelFunc

	mu  sync.RWMutex
	cur *Snapshot
}

// New builds a Store. Call Close at shutdown.
func New(fetch Fetcher, opt Options) *Store {
	s := &Store{
		fetch: fetch,
		ttl:   opt.TTL,
		loc:   opt.Location,
		log:   opt.Logger,
		now:   opt.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	s.base, s.cancel = context.WithCancel(context.Background())
	wait := opt.RefreshWait
	if wait <= 0 {
		wait = 2 * time.Second
	}
	s.refresh = debounce.New(wait, func(ctx context.Context) {
		if _, err := s.Refresh(ctx); err != nil {
			s.log.Warn("scheduled statistics refresh failed", zap.Error(err))
		}
	})
	return s
}

// Get returns the cached snapshot while it is fresh, otherwise fetches a
// new one. Concurrent callers share one fetch.
func (s *Store) Get(ctx context.Context) (*Snapshot, error) {
	if snap, ok := s.Peek(); ok && s.fresh(snap) {
		return snap, nil
	}
	return s.Refresh(ctx)
}

// Peek returns the cached snapshot, fresh or not, without any I/O.
func (s *Store) Peek() (*Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur, s.cur != nil
}

// Refresh fetches unconditionally and replaces the cached snapshot.
// A failed fetch keeps the previous snapshot. Concurrent callers share one
// fetch; ctx only bounds how long this caller waits for it.
func (s *Store) Refresh(ctx context.Context) (*Snapshot, error) {
	select {
	case res := <-s.group.DoChan("all", s.load):
		if res.Err != nil {
			return nil, fmt.Errorf("snapshot refresh: %w", res.Err)
		}
		return res.Val.(*Snapshot), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("snapshot refresh: %w", ctx.Err())
	}
}

// load runs one shared fetch under the store's context, not a caller's.
func (s *Store) load() (any, error) {
	ctx, cancel := timeouts.WithTimeout(s.base, timeouts.Stats(), s.log, "statistics fetch")
	defer cancel()

	records, err := s.fetch.All(ctx, models.CourseAll)
	if err != nil {
		return nil, err
	}
	now := s.now()
	snap := &Snapshot{
		Records:   records,
		Summary:   stats.Compute(records, s.loc, now),
		FetchedAt: now,
	}
	s.mu.Lock()
	s.cur = snap
	s.mu.Unlock()
	s.log.Debug("statistics snapshot refreshed", zap.Int("records", len(records)))
	return snap, nil
}

// ScheduleRefresh asks for a refresh once the debounce window has passed
// without another request.
func (s *Store) ScheduleRefresh() {
	s.refresh.Trigger()
}

// TodayCount returns today's registrations from the cached snapshot. ok is
// false when nothing has been fetched yet.
func (s *Store) TodayCount() (int, bool) {
	snap, ok := s.Peek()
	if !ok {
		return 0, false
	}
	return stats.Today(snap.Records, s.loc, s.now()), true
}

// Close stops the refresh debouncer and cancels any fetch in flight.
func (s *Store) Close() {
	s.refresh.Stop()
	s.cancel()
}

func (s *Store) fresh(snap *Snapshot) bool {
	if s.ttl <= 0 {
		return false
	}
	return s.now().Sub(snap.FetchedAt) < s.ttl
}
