package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	orgID := uuid.New()
	in := AccessClaims{UserID: uuid.New(), TenantID: &orgID, Roles: []string{"org_admin"}}

	raw, err := SignAccessToken(in, time.Hour, testSecret, time.Now())
	require.NoError(t, err)

	out, err := ParseAccessToken(raw, testSecret)
	require.NoError(t, err)
	assert.Equal(t, in.UserID, out.UserID)
	require.NotNil(t, out.TenantID)
	assert.Equal(t, orgID, *out.TenantID)
	assert.Equal(t, []string{"org_admin"}, out.Roles)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	raw, err := SignAccessToken(AccessClaims{UserID: uuid.New()}, time.Minute, testSecret, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = ParseAccessToken(raw, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	raw, err := SignAccessToken(AccessClaims{UserID: uuid.New()}, time.Hour, testSecret, time.Now())
	require.NoError(t, err)

	_, err = ParseAccessToken(raw, "other")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsNonAccessTokens(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  uuid.NewString(),
		"type": "refresh",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseAccessToken(raw, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashSHA256IsStable(t *testing.T) {
	assert.Equal(t, HashSHA256("abc"), HashSHA256("abc"))
	assert.Len(t, HashSHA256("abc"), 64)
}
