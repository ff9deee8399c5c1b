package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()

	issuer, err := NewTokenIssuer(TokenConfig{
		Secret:     "test-secret",
		Algorithm:  "HS256",
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
	require.NoError(t, err)
	return issuer
}

func TestNewTokenIssuer_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  TokenConfig
	}{
		{name: "unknown algorithm", cfg: TokenConfig{Secret: "s", Algorithm: "HS999", AccessTTL: time.Minute, RefreshTTL: time.Hour}},
		{name: "asymmetric algorithm", cfg: TokenConfig{Secret: "s", Algorithm: "RS256", AccessTTL: time.Minute, RefreshTTL: time.Hour}},
		{name: "empty secret", cfg: TokenConfig{Algorithm: "HS256", AccessTTL: time.Minute, RefreshTTL: time.Hour}},
		{name: "zero access ttl", cfg: TokenConfig{Secret: "s", Algorithm: "HS256", RefreshTTL: time.Hour}},
		{name: "zero refresh ttl", cfg: TokenConfig{Secret: "s", Algorithm: "HS256", AccessTTL: time.Minute}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTokenIssuer(tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidTokenConfig)
		})
	}
}

func TestTokenIssuer_AccessRoundTrip(t *testing.T) {
	issuer := newTestIssuer(t)

	token, err := issuer.IssueAccess("user-1", "alice")
	require.NoError(t, err)

	claims, err := issuer.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "user-1", claims.UserID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), claims.ExpiresAt.Time, 2*time.Second)
}

func TestTokenIssuer_RefreshRoundTrip(t *testing.T) {
	issuer := newTestIssuer(t)

	token, expiresAt, err := issuer.IssueRefresh("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, 2*time.Second)

	claims, err := issuer.VerifyRefresh(token)
	require.NoError(t, err)
	assert.Equal(t, RefreshTokenType, claims.Type)
	assert.Equal(t, "user-1", claims.UserID)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenIssuer_RefreshTokensAreUniqueWithinOneSecond(t *testing.T) {
	issuer := newTestIssuer(t)
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return fixed }

	first, _, err := issuer.IssueRefresh("user-1")
	require.NoError(t, err)
	second, _, err := issuer.IssueRefresh("user-1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestTokenIssuer_VerifyRefresh_WrongType(t *testing.T) {
	issuer := newTestIssuer(t)

	access, err := issuer.IssueAccess("user-1", "alice")
	require.NoError(t, err)

	_, err = issuer.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestTokenIssuer_VerifyAccess_RejectsRefreshToken(t *testing.T) {
	issuer := newTestIssuer(t)

	refresh, _, err := issuer.IssueRefresh("user-1")
	require.NoError(t, err)

	_, err = issuer.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := newTestIssuer(t)
	issued := time.Now().Add(-8 * 24 * time.Hour)
	issuer.now = func() time.Time { return issued }

	access, err := issuer.IssueAccess("user-1", "alice")
	require.NoError(t, err)
	refresh, _, err := issuer.IssueRefresh("user-1")
	require.NoError(t, err)

	issuer.now = time.Now

	_, err = issuer.VerifyAccess(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Expiry is judged before the type claim.
	_, err = issuer.VerifyRefresh(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_FailsClosed(t *testing.T) {
	issuer := newTestIssuer(t)

	valid, err := issuer.IssueAccess("user-1", "alice")
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	otherKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	otherAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, AccessClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		UserID:           "user-1",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":      "",
		"garbage":    "not-a-jwt",
		"tampered":   tampered,
		"other key":  otherKey,
		"other alg":  otherAlg,
		"alg none":   unsigned,
		"no expiry":  noExpiry,
		"three dots": "a.b.c",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.VerifyAccess(token)
			assert.ErrorIs(t, err, ErrInvalidToken)

			_, err = issuer.VerifyRefresh(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestHashRefreshToken_Deterministic(t *testing.T) {
	assert.Equal(t, HashRefreshToken("abc"), HashRefreshToken("abc"))
	assert.NotEqual(t, HashRefreshToken("abc"), HashRefreshToken("abd"))
	assert.Len(t, HashRefreshToken("abc"), 32)
}
