package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenService("secret", time.Hour)

	token, err := tokens.Issue("u-1", "alice")
	require.NoError(t, err)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestTokenExpires(t *testing.T) {
	tokens := NewTokenService("secret", time.Minute)
	issued := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issued }

	token, err := tokens.Issue("u-1", "alice")
	require.NoError(t, err)

	tokens.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = tokens.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsOtherSecretAndAlgorithm(t *testing.T) {
	token, err := NewTokenService("secret", time.Hour).Issue("u-1", "alice")
	require.NoError(t, err)

	_, err = NewTokenService("other", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = NewTokenService("secret", time.Hour).Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenService("secret", time.Hour).Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
