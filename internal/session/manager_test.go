package session

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupManager(t *testing.T, ttl time.Duration) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	return NewManager(cache, ttl), mr
}

func TestEstablishAndResolve(t *testing.T) {
	m, _ := setupManager(t, time.Minute)
	ctx := context.Background()

	token, err := m.Establish(ctx, "user-1")
	if err != nil {
		t.Fatalf("establish: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	userID, err := m.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1, got %s", userID)
	}
}

func TestDestroyEndsSession(t *testing.T) {
	m, _ := setupManager(t, time.Minute)
	ctx := context.Background()

	token, err := m.Establish(ctx, "user-1")
	if err != nil {
		t.Fatalf("establish: %v", err)
	}
	if err := m.Destroy(ctx, token); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if _, err := m.Resolve(ctx, token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	// Destroying again is harmless.
	if err := m.Destroy(ctx, token); err != nil {
		t.Fatalf("second destroy: %v", err)
	}
}

func TestSessionExpires(t *testing.T) {
	m, mr := setupManager(t, time.Minute)
	ctx := context.Background()

	token, err := m.Establish(ctx, "user-1")
	if err != nil {
		t.Fatalf("establish: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := m.Resolve(ctx, token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after expiry, got %v", err)
	}
}

func TestResolveUnknownToken(t *testing.T) {
	m, _ := setupManager(t, time.Minute)

	if _, err := m.Resolve(context.Background(), "not-a-token"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}
