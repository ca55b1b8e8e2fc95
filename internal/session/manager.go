// Package session binds request contexts to authenticated users through an
// opaque server-side token stored in Redis.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CookieName carries the session token between requests.
const CookieName = "sid"

const keyPrefix = "sess:"

// ErrNoSession means the token is unknown or expired.
var ErrNoSession = errors.New("no active session")

// Manager issues and resolves session tokens. Tokens are random and carry
// no claims; Redis is the single source of truth for liveness.
type Manager struct {
	cache *redis.Client
	ttl   time.Duration
}

// NewManager builds a session manager with the given token lifetime.
func NewManager(cache *redis.Client, ttl time.Duration) *Manager {
	return &Manager{cache: cache, ttl: ttl}
}

// Establish creates a session for the user and returns its token.
func (m *Manager) Establish(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := m.cache.Set(ctx, keyPrefix+token, userID, m.ttl).Err(); err != nil {
		return "", fmt.Errorf("establish session: %w", err)
	}
	return token, nil
}

// Resolve returns the user id bound to the token.
func (m *Manager) Resolve(ctx context.Context, token string) (string, error) {
	userID, err := m.cache.Get(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("resolve session: %w", err)
	}
	return userID, nil
}

// Destroy removes the session. Destroying an unknown token is not an error.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if err := m.cache.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}
