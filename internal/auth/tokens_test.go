package auth

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	ts, err := NewTokenService(key, time.Hour)
	require.NoError(t, err)
	return ts
}

func TestTokenService_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	issued, err := ts.GenerateAccessToken("alice", "sess-1")
	require.NoError(t, err)
	assert.NotEmpty(t, issued.Token)
	assert.NotEmpty(t, issued.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, 5*time.Second)

	claims, err := ts.VerifyAccessToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, issued.TokenID, claims.TokenID)
	assert.Equal(t, "alice", claims.Subject)
}

func TestTokenService_UniqueTokenIDs(t *testing.T) {
	ts := newTestTokenService(t)

	a, err := ts.GenerateAccessToken("alice", "s")
	require.NoError(t, err)
	b, err := ts.GenerateAccessToken("alice", "s")
	require.NoError(t, err)

	assert.NotEqual(t, a.TokenID, b.TokenID)
	assert.NotEqual(t, a.Token, b.Token)
}

func TestTokenService_Expired(t *testing.T) {
	ts := newTestTokenService(t)
	ts.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	issued, err := ts.GenerateAccessToken("alice", "sess-1")
	require.NoError(t, err)

	ts.now = time.Now
	_, err = ts.VerifyAccessToken(issued.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_Invalid(t *testing.T) {
	ts := newTestTokenService(t)
	other := newTestTokenService(t)

	issued, err := other.GenerateAccessToken("alice", "sess-1")
	require.NoError(t, err)

	for _, tok := range []string{"", "garbage", "v4.local.AAAA", issued.Token} {
		_, err := ts.VerifyAccessToken(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestNewTokenService_BadKey(t *testing.T) {
	_, err := NewTokenService([]byte("short"), time.Hour)
	assert.Error(t, err)
}

func TestNewTokenService_DefaultDuration(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	ts, err := NewTokenService(key, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultAccessTokenDuration, ts.AccessTokenDuration())
}

func TestLoadOrGenerateKey_Persists(t *testing.T) {
	dir := t.TempDir()

	first, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, first, keyLength)

	second, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	raw, err := os.ReadFile(filepath.Join(dir, keyFileName))
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(first), string(raw))
}

func TestLoadOrGenerateKey_Ephemeral(t *testing.T) {
	a, err := LoadOrGenerateKey("")
	require.NoError(t, err)
	b, err := LoadOrGenerateKey("")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestLoadOrGenerateKey_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, keyFileName), []byte("nothex"), 0o600))

	_, err := LoadOrGenerateKey(dir)
	assert.Error(t, err)
}
