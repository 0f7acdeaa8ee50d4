package auth_test

import (
	"testing"

	"github.com/dalemusser/regdash/internal/app/system/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentials_Plaintext(t *testing.T) {
	c := auth.Credentials{Login: "admin", Password: "s3cret"}
	assert.NoError(t, c.Check("admin", "s3cret"))
	assert.NoError(t, c.Check("  admin ", "s3cret"))
	assert.ErrorIs(t, c.Check("admin", "wrong"), auth.ErrInvalidCredentials)
	assert.ErrorIs(t, c.Check("root", "s3cret"), auth.ErrInvalidCredentials)
}

func TestCredentials_Hash(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)

	c := auth.Credentials{Login: "admin", Password: "ignored", PasswordHash: hash}
	assert.NoError(t, c.Check("admin", "s3cret"))
	assert.ErrorIs(t, c.Check("admin", "ignored"), auth.ErrInvalidCredentials)
}

func TestCredentials_Unconfigured(t *testing.T) {
	assert.False(t, auth.Credentials{}.Configured())
	assert.ErrorIs(t, auth.Credentials{Login: "admin"}.Check("admin", ""), auth.ErrInvalidCredentials)
}
