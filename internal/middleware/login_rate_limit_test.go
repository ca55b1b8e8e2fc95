package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func setupRateLimitApp(t *testing.T, maxPerMin int) *fiber.App {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	app := fiber.New()
	app.Post("/login", LoginRateLimit(cache, maxPerMin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func attempt(t *testing.T, app *fiber.App, identifier string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/login",
		strings.NewReader(`{"identifier":"`+identifier+`","password":"x"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestLoginRateLimitBlocksAfterThreshold(t *testing.T) {
	app := setupRateLimitApp(t, 3)

	for i := 0; i < 3; i++ {
		if code := attempt(t, app, "test@x.com"); code != fiber.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i+1, code)
		}
	}
	if code := attempt(t, app, "test@x.com"); code != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 past the limit, got %d", code)
	}
}

func TestLoginRateLimitIsPerIdentifier(t *testing.T) {
	app := setupRateLimitApp(t, 1)

	if code := attempt(t, app, "a@x.com"); code != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if code := attempt(t, app, "b@x.com"); code != fiber.StatusOK {
		t.Fatalf("expected separate identifier to pass, got %d", code)
	}
	if code := attempt(t, app, "a@x.com"); code != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 for repeated identifier, got %d", code)
	}
}
