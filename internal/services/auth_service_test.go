package services

import (
	"testing"
	"time"

	"blogapi/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuth(t *testing.T) AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return AuthService{
		Secret:            []byte("test-secret"),
		TTL:               time.Minute,
		AdminUsername:     "admin",
		AdminPasswordHash: string(hash),
	}
}

func TestIssueAndParseToken(t *testing.T) {
	auth := newAuth(t)

	token, exp, err := auth.IssueToken("admin", "s3cret")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)

	rc, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestContext{Subject: "admin", Role: "admin"}, rc)
}

func TestIssueTokenBadCredentials(t *testing.T) {
	auth := newAuth(t)

	_, _, err := auth.IssueToken("admin", "wrong")
	assert.True(t, domain.IsUnauthorized(err))

	_, _, err = auth.IssueToken("root", "s3cret")
	assert.True(t, domain.IsUnauthorized(err))
}

func TestParseTokenRejects(t *testing.T) {
	auth := newAuth(t)
	token, _, err := auth.IssueToken("admin", "s3cret")
	require.NoError(t, err)

	other := auth
	other.Secret = []byte("other-secret")
	_, err = other.ParseToken(token)
	assert.True(t, domain.IsUnauthorized(err))

	later := auth
	later.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = later.ParseToken(token)
	assert.True(t, domain.IsUnauthorized(err))

	_, err = auth.ParseToken("not-a-token")
	assert.True(t, domain.IsUnauthorized(err))
}

func TestAuthDisabled(t *testing.T) {
	var auth AuthService
	assert.False(t, auth.Enabled())

	_, _, err := auth.IssueToken("admin", "x")
	assert.True(t, domain.IsUnauthorized(err))

	_, err = auth.ParseToken("x")
	assert.True(t, domain.IsUnauthorized(err))
}

func TestParseTokenRequiresAdminRole(t *testing.T) {
	auth := newAuth(t)
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "mallory",
		"role": "editor",
		"exp":  time.Now().Add(time.Minute).Unix(),
	})
	raw, err := forged.SignedString(auth.Secret)
	require.NoError(t, err)

	_, err = auth.ParseToken(raw)
	assert.True(t, domain.IsUnauthorized(err))
}
