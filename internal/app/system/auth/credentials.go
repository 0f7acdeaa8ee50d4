package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any login/password mismatch.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// MsgInvalidCredentials is shown on the login form after a mismatch.
const MsgInvalidCredentials = "Login yoki parol noto'g'ri!"

// Credentials are the single configured admin account. PasswordHash
// (bcrypt) wins over Password when both are set.
type Credentials struct {
	Login        string
	Password     string
	PasswordHash string
}

// Configured reports whether a login and some password are set.
func (c Credentials) Configured() bool {
	return c.Login != "" && (c.Password != "" || c.PasswordHash != "")
}

// Check compares login/password against c without leaking timing about
// which part mismatched.
func (c Credentials) Check(login, password string) error {
	if !c.Configured() {
		return ErrInvalidCredentials
	}
	loginOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(login)), []byte(c.Login)) == 1

	var passOK bool
	if c.PasswordHash != "" {
		passOK = bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) == 1
	}

	if !loginOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword returns a bcrypt hash suitable for admin_password_hash.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
