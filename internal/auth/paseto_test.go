package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestPasetoService_RoundTrip(t *testing.T) {
	svc, err := NewPasetoService(testKey)
	require.NoError(t, err)

	userID := uuid.New()
	sessionID := uuid.New()

	token, err := svc.CreateToken(userID, sessionID, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, sessionID, claims.SessionID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestPasetoService_ExpiredToken(t *testing.T) {
	svc, err := NewPasetoService(testKey)
	require.NoError(t, err)

	token, err := svc.CreateToken(uuid.New(), uuid.New(), -time.Minute)
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.Error(t, err)
}

func TestPasetoService_WrongKey(t *testing.T) {
	svc1, err := NewPasetoService(testKey)
	require.NoError(t, err)

	svc2, err := NewPasetoService([]byte("fedcba9876543210fedcba9876543210"))
	require.NoError(t, err)

	token, err := svc1.CreateToken(uuid.New(), uuid.New(), time.Hour)
	require.NoError(t, err)

	_, err = svc2.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasetoService_GarbageToken(t *testing.T) {
	svc, err := NewPasetoService(testKey)
	require.NoError(t, err)

	_, err = svc.VerifyToken("v4.local.not-a-real-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewPasetoService_BadKeyLength(t *testing.T) {
	_, err := NewPasetoService([]byte("too-short"))
	assert.Error(t, err)
}
