package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, "hr-directory", time.Hour)

	token, err := tm.GenerateToken("session-1")
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, "hr-directory", claims.Issuer)
	assert.Equal(t, time.Hour, tm.TTL())
}

func TestTokenManager_RejectsOtherSecret(t *testing.T) {
	token, err := NewTokenManager(testSecret, "hr-directory", time.Hour).GenerateToken("s")
	require.NoError(t, err)

	_, err = NewTokenManager("another-secret-another-secret-xx", "hr-directory", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsOtherIssuer(t *testing.T) {
	token, err := NewTokenManager(testSecret, "someone-else", time.Hour).GenerateToken("s")
	require.NoError(t, err)

	_, err = NewTokenManager(testSecret, "hr-directory", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Expired(t *testing.T) {
	tm := NewTokenManager(testSecret, "hr-directory", -time.Minute)
	token, err := tm.GenerateToken("s")
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_EmptySessionID(t *testing.T) {
	tm := NewTokenManager(testSecret, "hr-directory", time.Hour)
	token, err := tm.GenerateToken("")
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidClaim)
}

func TestTokenManager_Garbage(t *testing.T) {
	_, err := NewTokenManager(testSecret, "hr-directory", time.Hour).ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
