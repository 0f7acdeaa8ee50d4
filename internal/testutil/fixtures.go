package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/regdash/internal/app/store/sessions"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	t        *testing.T
	db       *mongo.Database
	sessions *sessions.Store
}

// NewFixtures creates a new Fixtures instance.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{t: t, db: db, sessions: sessions.New(db)}
}

// DB returns the underlying database.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateSession opens an admin session that expires after maxAge.
func (f *Fixtures) CreateSession(ctx context.Context, login string, maxAge time.Duration) sessions.Session {
	f.t.Helper()
	s, err := f.sessions.Create(ctx, login, "127.0.0.1", "testutil", maxAge)
	if err != nil {
		f.t.Fatalf("failed to create session: %v", err)
	}
	return s
}

// CreateEndedSession opens and immediately logs out a session.
func (f *Fixtures) CreateEndedSession(ctx context.Context, login string) sessions.Session {
	f.t.Helper()
	s := f.CreateSession(ctx, login, time.Hour)
	if err := f.sessions.Close(ctx, s.ID, sessions.EndLogout); err != nil {
		f.t.Fatalf("failed to close session: %v", err)
	}
	return s
}
