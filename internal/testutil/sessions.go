package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/regdash/internal/app/store/sessions"
	"github.com/google/uuid"
)

// MemSessions is an in-memory stand-in for the Mongo sessions store with
// the same Create/Validate/Close semantics.
type MemSessions struct {
	mu   sync.Mutex
	recs map[string]sessions.Session
}

// NewMemSessions returns an empty MemSessions.
func NewMemSessions() *MemSessions {
	return &MemSessions{recs: map[string]sessions.Session{}}
}

func (m *MemSessions) Create(_ context.Context, login, ip, ua string, maxAge time.Duration) (sessions.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	s := sessions.Session{
		ID:           uuid.NewString(),
		Login:        login,
		IP:           ip,
		UserAgent:    ua,
		CreatedAt:    now,
		ExpiresAt:    now.Add(maxAge),
		LastActiveAt: now,
	}
	m.recs[s.ID] = s
	return s, nil
}

func (m *MemSessions) Validate(_ context.Context, token string) (sessions.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.recs[token]
	switch {
	case !ok:
		return sessions.Session{}, sessions.ErrNotFound
	case s.EndedAt != nil:
		return sessions.Session{}, sessions.ErrEnded
	case !time.Now().Before(s.ExpiresAt):
		return sessions.Session{}, sessions.ErrExpired
	}
	s.LastActiveAt = time.Now()
	m.recs[token] = s
	return s, nil
}

func (m *MemSessions) Close(_ context.Context, token, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.recs[token]
	if !ok {
		return sessions.ErrNotFound
	}
	if s.EndedAt == nil {
		now := time.Now()
		s.EndedAt = &now
		s.EndReason = reason
		m.recs[token] = s
	}
	return nil
}

// Len returns how many sessions were ever created.
func (m *MemSessions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recs)
}
