package sessions_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/regdash/internal/app/store/sessions"
	"github.com/dalemusser/regdash/internal/testutil"
	"github.com/google/uuid"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sess, err := store.Create(ctx, "admin", "192.168.1.1", "Mozilla/5.0", time.Hour)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := uuid.Parse(sess.ID); err != nil {
		t.Errorf("ID %q is not a uuid", sess.ID)
	}
	if sess.Login != "admin" {
		t.Errorf("Login: got %q, want %q", sess.Login, "admin")
	}
	if got := sess.ExpiresAt.Sub(sess.CreatedAt); got != time.Hour {
		t.Errorf("lifetime: got %v, want 1h", got)
	}
	if sess.EndedAt != nil {
		t.Error("expected EndedAt to be nil for new session")
	}
}

func TestStore_Validate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sess, err := store.Create(ctx, "admin", "10.0.0.1", "", time.Hour)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.Validate(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if got.Login != "admin" {
		t.Errorf("Login: got %q", got.Login)
	}
	if got.LastActiveAt.Before(sess.LastActiveAt) {
		t.Error("expected LastActiveAt to move forward")
	}
}

func TestStore_Validate_UnknownToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, token := range []string{"", "true", uuid.NewString()} {
		if _, err := store.Validate(ctx, token); !errors.Is(err, sessions.ErrNotFound) {
			t.Errorf("Validate(%q): got %v, want ErrNotFound", token, err)
		}
	}
}

func TestStore_Validate_Expired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sess, err := store.Create(ctx, "admin", "10.0.0.1", "", -time.Minute)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := store.Validate(ctx, sess.ID); !errors.Is(err, sessions.ErrExpired) {
		t.Errorf("got %v, want ErrExpired", err)
	}
}

func TestStore_Close(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sess, err := store.Create(ctx, "admin", "10.0.0.1", "", time.Hour)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Close(ctx, sess.ID, sessions.EndLogout); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := store.Validate(ctx, sess.ID); !errors.Is(err, sessions.ErrEnded) {
		t.Errorf("Validate after close: got %v, want ErrEnded", err)
	}

	closed, err := store.GetByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if closed.EndReason != sessions.EndLogout {
		t.Errorf("EndReason: got %q", closed.EndReason)
	}

	// Closing twice is fine.
	if err := store.Close(ctx, sess.ID, sessions.EndLogout); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestStore_CloseExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	expired, _ := store.Create(ctx, "admin", "", "", -time.Minute)
	live, _ := store.Create(ctx, "admin", "", "", time.Hour)

	n, err := store.CloseExpired(ctx)
	if err != nil {
		t.Fatalf("CloseExpired failed: %v", err)
	}
	if n != 1 {
		t.Errorf("closed %d, want 1", n)
	}

	got, _ := store.GetByID(ctx, expired.ID)
	if got.EndReason != sessions.EndExpired {
		t.Errorf("EndReason: got %q, want %q", got.EndReason, sessions.EndExpired)
	}
	if _, err := store.Validate(ctx, live.ID); err != nil {
		t.Errorf("live session rejected: %v", err)
	}

	active, err := store.CountActive(ctx)
	if err != nil {
		t.Fatalf("CountActive failed: %v", err)
	}
	if active != 1 {
		t.Errorf("CountActive: got %d, want 1", active)
	}
}
