package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
)

const defaultSessionTTL = 30 * time.Minute

// SessionStore maps session ids to user ids. Each successful Load pushes
// the expiry back by ttl.
// Key format: session:<session_id>
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Save(ctx context.Context, sessionID, userID string) error {
	if err := s.client.Set(ctx, s.key(sessionID), userID, s.ttl).Err(); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

func (s *SessionStore) Load(ctx context.Context, sessionID string) (string, error) {
	userID, err := s.client.GetEx(ctx, s.key(sessionID), s.ttl).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("session %s: %w", sessionID, domain.ErrNotAuthenticated)
	}
	if err != nil {
		return "", fmt.Errorf("session load: %w", err)
	}
	return userID, nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

func (s *SessionStore) key(sessionID string) string {
	return "session:" + sessionID
}
