package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	adminsessions "github.com/dalemusser/regdash/internal/app/store/sessions"
	"github.com/dalemusser/regdash/internal/app/system/timeouts"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	// DefaultSessionName is the cookie name when none is configured.
	DefaultSessionName = "regdash-session"

	// LoginPath is where unauthenticated visitors are sent.
	LoginPath = "/"

	tokenKey = "token"
)

// SessionStore is the server-side record of admin sessions.
// *adminsessions.Store satisfies it.
type SessionStore interface {
	Create(ctx context.Context, login, ip, userAgent string, maxAge time.Duration) (adminsessions.Session, error)
	Validate(ctx context.Context, token string) (adminsessions.Session, error)
	Close(ctx context.Context, token, reason string) error
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is the signed-in admin injected into r.Context().
type SessionUser struct {
	Token     string
	Login     string
	ExpiresAt time.Time
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects u into the request context, bypassing the cookie
// and the session store.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager ties the signed cookie to the server-side session record.
type SessionManager struct {
	cookies *sessions.CookieStore
	name    string
	maxAge  time.Duration
	backend SessionStore
	log     *zap.Logger

	// OnReject is called when a request carries a token the store refuses.
	OnReject func(r *http.Request, reason string)
}

// NewSessionManager builds the cookie store. The `secure` flag marks cookies
// Secure; use false for local development over plain http.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, backend SessionStore, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = DefaultSessionName
	}
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{
		cookies: store,
		name:    name,
		maxAge:  maxAge,
		backend: backend,
		log:     logger,
	}, nil
}

// MaxAge is the lifetime of new sessions.
func (sm *SessionManager) MaxAge() time.Duration { return sm.maxAge }

// LoadSessionUser injects the user into context when the cookie carries a
// token the session store accepts.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sm.backend == nil {
			next.ServeHTTP(w, r)
			return
		}
		sess, err := sm.cookies.Get(r, sm.name)
		if err != nil {
			// Signed with an old key or tampered with.
			var scErr securecookie.Error
			if errors.As(err, &scErr) && scErr.IsDecode() {
				sm.log.Debug("unreadable session cookie", zap.Error(err))
				sm.clearCookie(w, r)
			}
			next.ServeHTTP(w, r)
			return
		}
		token, _ := sess.Values[tokenKey].(string)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		rec, err := sm.backend.Validate(ctx, token)
		cancel()
		switch {
		case err == nil:
			r = withUser(r, &SessionUser{Token: rec.ID, Login: rec.Login, ExpiresAt: rec.ExpiresAt})
		case errors.Is(err, adminsessions.ErrNotFound),
			errors.Is(err, adminsessions.ErrEnded),
			errors.Is(err, adminsessions.ErrExpired):
			sm.clearCookie(w, r)
			if sm.OnReject != nil {
				sm.OnReject(r, err.Error())
			}
		default:
			sm.log.Error("session validation failed", zap.Error(err))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - HTMX: sends HX-Redirect to the login page
//   - HTML: 303 redirect to the login page
//   - API:  401 Unauthorized with a plain error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}

		dest := LoginPath + "?return=" + url.QueryEscape(currentURI(r))

		// HTMX: full-page client redirect (no partial swap)
		if r.Header.Get("HX-Request") == "true" {
			w.Header().Set("HX-Redirect", dest)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		if wantsHTML(r) {
			http.Redirect(w, r, dest, http.StatusSeeOther)
			return
		}

		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}

// SignIn records a new server-side session for login and stores its token
// in the cookie.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, login, ip string) (*SessionUser, error) {
	if sm.backend == nil {
		return nil, errors.New("auth: no session store configured")
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rec, err := sm.backend.Create(ctx, login, ip, r.UserAgent(), sm.maxAge)
	if err != nil {
		return nil, fmt.Errorf("auth: create session: %w", err)
	}

	sess, _ := sm.cookies.Get(r, sm.name)
	sess.Values[tokenKey] = rec.ID
	if err := sess.Save(r, w); err != nil {
		return nil, fmt.Errorf("auth: save cookie: %w", err)
	}
	return &SessionUser{Token: rec.ID, Login: rec.Login, ExpiresAt: rec.ExpiresAt}, nil
}

// SignOut ends the server-side session (if any) and deletes the cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	var closeErr error
	if u, ok := CurrentUser(r); ok && sm.backend != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		closeErr = sm.backend.Close(ctx, u.Token, adminsessions.EndLogout)
		cancel()
		if errors.Is(closeErr, adminsessions.ErrNotFound) {
			closeErr = nil
		}
	}
	sm.clearCookie(w, r)
	return closeErr
}

func (sm *SessionManager) clearCookie(w http.ResponseWriter, r *http.Request) {
	sess, _ := sm.cookies.Get(r, sm.name)
	delete(sess.Values, tokenKey)
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		sm.log.Warn("failed to clear session cookie", zap.Error(err))
	}
}

// SafeReturn returns ret when it is a local path, otherwise def.
func SafeReturn(ret, def string) string {
	if ret == "" || !strings.HasPrefix(ret, "/") || strings.HasPrefix(ret, "//") || strings.HasPrefix(ret, "/\\") {
		return def
	}
	if u, err := url.Parse(ret); err != nil || u.Host != "" || u.Scheme != "" {
		return def
	}
	return ret
}

// helpers

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	accept := r.Header.Get("Accept")
	return accept == "" || strings.Contains(accept, "text/html") || strings.Contains(accept, "*/*")
}

func currentURI(r *http.Request) string {
	u := *r.URL
	return u.RequestURI()
}
