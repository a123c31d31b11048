package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService([]byte("test-key"), "block-manager", time.Hour)

	tok, err := svc.Generate("admin", []string{"manage_options"})
	require.NoError(t, err)

	claims, err := svc.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.UserID)
	assert.True(t, claims.Can("manage_options"))
	assert.False(t, claims.Can("edit_posts"))
}

func TestTokenRejections(t *testing.T) {
	svc := NewTokenService([]byte("test-key"), "block-manager", time.Hour)
	tok, err := svc.Generate("admin", nil)
	require.NoError(t, err)

	other := NewTokenService([]byte("other-key"), "block-manager", time.Hour)
	_, err = other.Validate(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer := NewTokenService([]byte("test-key"), "someone-else", time.Hour)
	_, err = wrongIssuer.Validate(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Validate(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestNilClaimsCannot(t *testing.T) {
	var c *Claims
	assert.False(t, c.Can("manage_options"))
}

func TestExtractBearerToken(t *testing.T) {
	assert.Equal(t, "abc", ExtractBearerToken("Bearer abc"))
	assert.Equal(t, "abc", ExtractBearerToken("bearer abc"))
	assert.Empty(t, ExtractBearerToken("Basic abc"))
	assert.Empty(t, ExtractBearerToken("abc"))
	assert.Empty(t, ExtractBearerToken(""))
}

func TestNonceLifetime(t *testing.T) {
	start := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	now := start
	svc := NewNonceService("secret", 24*time.Hour)
	svc.now = func() time.Time { return now }

	n := svc.Create("bm_auto_save_nonce", "admin")
	require.NoError(t, svc.Verify(n, "bm_auto_save_nonce", "admin"))

	assert.ErrorIs(t, svc.Verify(n, "other_action", "admin"), ErrInvalidNonce)
	assert.ErrorIs(t, svc.Verify(n, "bm_auto_save_nonce", "editor"), ErrInvalidNonce)
	assert.ErrorIs(t, svc.Verify("", "bm_auto_save_nonce", "admin"), ErrInvalidNonce)

	now = start.Add(13 * time.Hour)
	assert.NoError(t, svc.Verify(n, "bm_auto_save_nonce", "admin"), "previous tick still valid")

	now = start.Add(25 * time.Hour)
	assert.ErrorIs(t, svc.Verify(n, "bm_auto_save_nonce", "admin"), ErrInvalidNonce)
}

func TestNonceDependsOnSecret(t *testing.T) {
	a := NewNonceService("one", time.Hour)
	b := NewNonceService("two", time.Hour)
	fixed := func() time.Time { return time.Unix(1_700_000_000, 0) }
	a.now, b.now = fixed, fixed

	assert.NotEqual(t, a.Create("x", "u"), b.Create("x", "u"))
	assert.ErrorIs(t, b.Verify(a.Create("x", "u"), "x", "u"), ErrInvalidNonce)
}
