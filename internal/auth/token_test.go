package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/mediavault/internal/models"
)

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func TestTokenManagerRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tm := NewTokenManager("secret", "mediavault", SessionTTL, WithClock(fixedClock(&now)))

	token, err := tm.Issue(42, "alice", models.RoleModerator)
	require.NoError(t, err)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice", claims.Name)
	assert.Equal(t, models.RoleModerator, claims.Role)
	assert.True(t, claims.ExpiresAt.Equal(now.Add(7*24*time.Hour)))
}

func TestTokenManagerExpiryBoundary(t *testing.T) {
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := issued
	tm := NewTokenManager("secret", "mediavault", SessionTTL, WithClock(fixedClock(&now)))

	token, err := tm.Issue(1, "admin", models.RoleAdmin)
	require.NoError(t, err)

	now = issued.Add(SessionTTL - time.Second)
	_, err = tm.Verify(token)
	require.NoError(t, err)

	now = issued.Add(SessionTTL + time.Second)
	_, err = tm.Verify(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManagerRejectsTampering(t *testing.T) {
	tm := NewTokenManager("secret", "mediavault", SessionTTL)
	token, err := tm.Issue(1, "admin", models.RoleAdmin)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	_, err = tm.Verify(forged)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = tm.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	other := NewTokenManager("other-secret", "mediavault", SessionTTL)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManagerRejectsWrongIssuer(t *testing.T) {
	token, err := NewTokenManager("secret", "someone-else", SessionTTL).Issue(1, "admin", models.RoleAdmin)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", "mediavault", SessionTTL).Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManagerRejectsNoneAlgorithm(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":  "1",
		"role": "admin",
		"iss":  "mediavault",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", "mediavault", SessionTTL).Verify(unsigned)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManagerUnknownRoleFallsBackToViewer(t *testing.T) {
	tm := NewTokenManager("secret", "mediavault", SessionTTL)
	token, err := tm.Issue(9, "mallory", models.Role("superuser"))
	require.NoError(t, err)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, claims.Role)
}
