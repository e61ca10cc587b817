package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix     = "session:"
	userSessionKeyPrefix = "user_sessions:"
)

// SessionStore keeps the live-session state in Redis. A token is only good
// while its session hash exists; revoking a session deletes the hash, and
// revoking all of a user's sessions walks the per-user set.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(sessionID uuid.UUID) string {
	return sessionKeyPrefix + sessionID.String()
}

func userSessionsKey(userID uuid.UUID) string {
	return userSessionKeyPrefix + userID.String()
}

// Create registers a new session for the user and returns its ID.
func (s *SessionStore) Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (uuid.UUID, error) {
	sessionID := uuid.New()

	pipe := s.client.Pipeline()
	pipe.HSet(ctx, sessionKey(sessionID), map[string]any{
		"user_id":    userID.String(),
		"created_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, sessionKey(sessionID), ttl)
	pipe.SAdd(ctx, userSessionsKey(userID), sessionID.String())
	pipe.Expire(ctx, userSessionsKey(userID), ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sessionID, nil
}

// IsLive reports whether the session still exists and belongs to the user.
func (s *SessionStore) IsLive(ctx context.Context, userID, sessionID uuid.UUID) (bool, error) {
	storedUserID, err := s.client.HGet(ctx, sessionKey(sessionID), "user_id").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check session: %w", err)
	}

	return storedUserID == userID.String(), nil
}

// Revoke deletes a single session.
func (s *SessionStore) Revoke(ctx context.Context, userID, sessionID uuid.UUID) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, sessionKey(sessionID))
	pipe.SRem(ctx, userSessionsKey(userID), sessionID.String())

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	return nil
}

// RevokeAllForUser deletes every live session belonging to the user. Logout
// uses this so a stolen token from an earlier login dies with the rest.
func (s *SessionStore) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	sessionIDs, err := s.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("failed to list user sessions: %w", err)
	}

	pipe := s.client.Pipeline()
	for _, id := range sessionIDs {
		pipe.Del(ctx, sessionKeyPrefix+id)
	}
	pipe.Del(ctx, userSessionsKey(userID))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to revoke user sessions: %w", err)
	}

	return nil
}
