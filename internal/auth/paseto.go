package auth

import (
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

// TokenClaims is what a valid access token carries: the account it belongs to
// and the server-side session it is bound to. Revocation happens on the
// session, not on the token itself.
type TokenClaims struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
	ExpiresAt time.Time
}

// PasetoService issues and verifies v4.local access tokens.
type PasetoService struct {
	key paseto.V4SymmetricKey
}

// NewPasetoService creates a token service from a 32-byte symmetric key.
func NewPasetoService(keyBytes []byte) (*PasetoService, error) {
	key, err := paseto.V4SymmetricKeyFromBytes(keyBytes)
	if err != nil {
		return nil, err
	}
	return &PasetoService{key: key}, nil
}

// CreateToken issues an encrypted token binding userID to sessionID for the
// given duration.
func (s *PasetoService) CreateToken(userID, sessionID uuid.UUID, duration time.Duration) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(duration))
	token.SetString("user_id", userID.String())
	token.SetString("session_id", sessionID.String())

	return token.V4Encrypt(s.key, nil), nil
}

// VerifyToken decrypts and validates a token, returning its claims.
func (s *PasetoService) VerifyToken(tokenString string) (*TokenClaims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(s.key, tokenString, nil)
	if err != nil {
		return nil, ErrInvalidToken
	}

	userIDStr, err := token.GetString("user_id")
	if err != nil {
		return nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, ErrInvalidToken
	}

	sessionIDStr, err := token.GetString("session_id")
	if err != nil {
		return nil, ErrInvalidToken
	}
	sessionID, err := uuid.Parse(sessionIDStr)
	if err != nil {
		return nil, ErrInvalidToken
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return nil, ErrInvalidToken
	}
	if time.Now().After(expiresAt) {
		return nil, ErrExpiredToken
	}

	return &TokenClaims{
		UserID:    userID,
		SessionID: sessionID,
		ExpiresAt: expiresAt,
	}, nil
}
