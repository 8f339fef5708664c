package auth

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locallibrary/catalog-server/internal/domain"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	key := make([]byte, KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	ts, err := NewTokenService(key, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	return ts
}

func TestTokenService_AccessTokenRoundTrip(t *testing.T) {
	ts := newTestTokenService(t)
	user := &domain.User{Syncable: domain.Syncable{ID: "usr-1"}, Email: "lib@example.com", IsRoot: true}

	token, err := ts.GenerateAccessToken(user, "ses-1")
	require.NoError(t, err)
	assert.Contains(t, token, "v4.local.")

	claims, err := ts.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", claims.UserID)
	assert.Equal(t, "usr-1", claims.Subject)
	assert.Equal(t, "ses-1", claims.SessionID)
	assert.Equal(t, "lib@example.com", claims.Email)
	assert.True(t, claims.IsRoot)
}

func TestTokenService_Expired(t *testing.T) {
	ts := newTestTokenService(t)
	user := &domain.User{Syncable: domain.Syncable{ID: "usr-1"}}

	token, err := ts.GenerateAccessToken(user, "ses-1")
	require.NoError(t, err)

	ts.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = ts.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_WrongKey(t *testing.T) {
	a := newTestTokenService(t)
	b := newTestTokenService(t)

	token, err := a.GenerateAccessToken(&domain.User{Syncable: domain.Syncable{ID: "usr-1"}}, "ses-1")
	require.NoError(t, err)

	_, err = b.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenService_BadKey(t *testing.T) {
	_, err := NewTokenService([]byte("short"), time.Minute, time.Hour)
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	ts := newTestTokenService(t)

	a, err := ts.GenerateRefreshToken()
	require.NoError(t, err)
	b, err := ts.GenerateRefreshToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, HashRefreshToken(a), 64)
	assert.Equal(t, HashRefreshToken(a), HashRefreshToken(a))
	assert.NotEqual(t, HashRefreshToken(a), HashRefreshToken(b))
}

func TestLoadOrGenerateKey(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	key, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, key, KeySize)

	again, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, key, again)

	info, err := os.Stat(filepath.Join(dir, KeyFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadOrGenerateKey_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, KeyFile), []byte("nothex"), 0o600))

	_, err := LoadOrGenerateKey(dir)
	assert.Error(t, err)
}
