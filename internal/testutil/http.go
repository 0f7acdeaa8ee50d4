package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/regdash/internal/app/system/auth"
)

// AdminLogin is the login used by WithAdmin.
const AdminLogin = "admin"

// WithAdmin adds a signed-in admin to the request context for testing
// authenticated handlers. This bypasses the session middleware.
func WithAdmin(r *http.Request) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		Token:     "test-token",
		Login:     AdminLogin,
		ExpiresAt: time.Now().Add(time.Hour),
	})
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewHTMXRequest creates a request carrying the HX-Request header.
func NewHTMXRequest(method, target string) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	r.Header.Set("HX-Request", "true")
	return r
}

// NewFormRequest creates a urlencoded POST request.
func NewFormRequest(target string, form url.Values) *http.Request {
	var body io.Reader = strings.NewReader(form.Encode())
	r := httptest.NewRequest(http.MethodPost, target, body)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

// Serve runs h and swallows template panics, which happen when the
// template engine is not booted in unit tests.
func Serve(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	func() {
		defer func() { _ = recover() }()
		h(rec, r)
	}()
	return rec
}
