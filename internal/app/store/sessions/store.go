// internal/app/store/sessions/store.go
package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/regdash/internal/app/system/indexes"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection holds admin sessions.
const Collection = "admin_sessions"

// End reasons
const (
	EndLogout  = "logout"
	EndExpired = "expired"
)

var (
	// ErrNotFound means no session has that token.
	ErrNotFound = errors.New("sessions: not found")
	// ErrEnded means the session was logged out or swept.
	ErrEnded = errors.New("sessions: ended")
	// ErrExpired means the session is past ExpiresAt.
	ErrExpired = errors.New("sessions: expired")
)

// Session is one signed-in admin. ID is the opaque token kept in the cookie.
type Session struct {
	ID    string `bson:"_id"`
	Login string `bson:"login"`

	// Timing
	CreatedAt    time.Time  `bson:"created_at"`
	ExpiresAt    time.Time  `bson:"expires_at"`
	LastActiveAt time.Time  `bson:"last_active_at"`
	EndedAt      *time.Time `bson:"ended_at,omitempty"`

	// How did session end?
	EndReason string `bson:"end_reason,omitempty"` // "logout", "expired", ""

	// Context
	IP        string `bson:"ip"`
	UserAgent string `bson:"user_agent,omitempty"`

	// Computed on session close
	DurationSecs int64 `bson:"duration_secs,omitempty"`
}

// Active reports whether s can still authorize requests at now.
func (s Session) Active(now time.Time) bool {
	return s.EndedAt == nil && now.Before(s.ExpiresAt)
}

// Store manages admin sessions.
type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

// New creates a new sessions Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection), now: func() time.Time { return time.Now().UTC() }}
}

// EnsureIndexes creates necessary indexes for efficient querying.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		// Sweeper: open sessions by expiry
		{
			Keys:    bson.D{{Key: "ended_at", Value: 1}, {Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("idx_admin_sessions_open"),
		},
		// Login history
		{
			Keys:    bson.D{{Key: "login", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_admin_sessions_login"),
		},
	}
	return indexes.Ensure(ctx, s.c, models)
}

// Create starts a session for login that expires after maxAge.
func (s *Store) Create(ctx context.Context, login, ip, userAgent string, maxAge time.Duration) (Session, error) {
	now := s.now()
	sess := Session{
		ID:           uuid.NewString(),
		Login:        login,
		CreatedAt:    now,
		ExpiresAt:    now.Add(maxAge),
		LastActiveAt: now,
		IP:           ip,
		UserAgent:    userAgent,
	}
	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Validate loads the session for token and checks it is still usable.
// On success LastActiveAt is bumped.
func (s *Store) Validate(ctx context.Context, token string) (Session, error) {
	if _, err := uuid.Parse(token); err != nil {
		return Session{}, ErrNotFound
	}
	var sess Session
	err := s.c.FindOne(ctx, bson.M{"_id": token}).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}

	now := s.now()
	switch {
	case sess.EndedAt != nil:
		return Session{}, ErrEnded
	case !now.Before(sess.ExpiresAt):
		return Session{}, ErrExpired
	}

	_, err = s.c.UpdateOne(ctx,
		bson.M{"_id": token, "ended_at": nil},
		bson.M{"$set": bson.M{"last_active_at": now}},
	)
	if err != nil {
		return Session{}, err
	}
	sess.LastActiveAt = now
	return sess, nil
}

// Close ends a session with the given reason and records its duration.
// Closing an already-ended session is a no-op.
func (s *Store) Close(ctx context.Context, token, reason string) error {
	var sess Session
	err := s.c.FindOne(ctx, bson.M{"_id": token}).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if sess.EndedAt != nil {
		return nil
	}

	now := s.now()
	_, err = s.c.UpdateOne(ctx, bson.M{"_id": token, "ended_at": nil}, bson.M{
		"$set": bson.M{
			"ended_at":      now,
			"end_reason":    reason,
			"duration_secs": int64(now.Sub(sess.CreatedAt).Seconds()),
		},
	})
	return err
}

// GetByID retrieves a session by its token.
func (s *Store) GetByID(ctx context.Context, token string) (Session, error) {
	var sess Session
	err := s.c.FindOne(ctx, bson.M{"_id": token}).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Session{}, ErrNotFound
	}
	return sess, err
}

// CloseExpired ends every open session whose expiry has passed.
func (s *Store) CloseExpired(ctx context.Context) (int64, error) {
	now := s.now()
	result, err := s.c.UpdateMany(ctx,
		bson.M{
			"ended_at":   nil,
			"expires_at": bson.M{"$lte": now},
		},
		bson.M{
			"$set": bson.M{
				"ended_at":   now,
				"end_reason": EndExpired,
			},
		},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// CountActive counts open, unexpired sessions.
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"ended_at":   nil,
		"expires_at": bson.M{"$gt": s.now()},
	})
}
