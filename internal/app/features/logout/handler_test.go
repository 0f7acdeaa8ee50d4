package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/regdash/internal/app/features/logout"
	"github.com/dalemusser/regdash/internal/app/store/sessions"
	"github.com/dalemusser/regdash/internal/app/system/auth"
	"github.com/dalemusser/regdash/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, store auth.SessionStore) (*logout.Handler, *auth.SessionManager) {
	t.Helper()
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", time.Hour, false, store, logger)
	require.NoError(t, err)
	return logout.NewHandler(sm, nil, logger), sm
}

func TestServeLogout_Anonymous(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	h.ServeLogout(rec, httptest.NewRequest(http.MethodGet, "/logout", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestServeLogout_HTMX(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	h.ServeLogout(rec, testutil.NewHTMXRequest(http.MethodGet, "/logout"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("HX-Redirect"))
}

func TestServeLogout_EndsSessionRecord(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := sessions.New(db)
	h, sm := newTestHandler(t, store)

	signIn := httptest.NewRecorder()
	u, err := sm.SignIn(signIn, httptest.NewRequest(http.MethodPost, "/", nil), "admin", "127.0.0.1")
	require.NoError(t, err)

	req := auth.WithTestUser(httptest.NewRequest(http.MethodGet, "/logout", nil), u)
	rec := httptest.NewRecorder()
	h.ServeLogout(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	_, err = store.Validate(ctx, u.Token)
	assert.ErrorIs(t, err, sessions.ErrEnded)

	got, err := store.GetByID(ctx, u.Token)
	require.NoError(t, err)
	assert.Equal(t, sessions.EndLogout, got.EndReason)
}
