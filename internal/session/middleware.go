package session

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/identra/identra/internal/identity"
)

const principalKey = "principal"

// LoadPrincipal resolves the session cookie and attaches the current user to
// the request. The user is re-read from the store on every request so status
// changes take effect immediately. A missing or expired session falls
// through as unauthenticated; a backend failure is a generic error, never a
// silent logout.
func LoadPrincipal(m *Manager, repo identity.Repository, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(CookieName)
		if token == "" {
			return c.Next()
		}
		userID, err := m.Resolve(c.UserContext(), token)
		if errors.Is(err, ErrNoSession) {
			return c.Next()
		}
		if err != nil {
			log.Error("resolve session", "error", err)
			return fiber.NewError(http.StatusInternalServerError, "session unavailable")
		}
		user, err := repo.FindByID(c.UserContext(), userID)
		if errors.Is(err, identity.ErrNotFound) {
			// The account vanished underneath a live session.
			return c.Next()
		}
		if err != nil {
			log.Error("load principal", "error", err)
			return fiber.NewError(http.StatusInternalServerError, "session unavailable")
		}
		c.Locals(principalKey, user)
		return c.Next()
	}
}

// Principal returns the authenticated user for the request, if any.
func Principal(c *fiber.Ctx) (identity.User, bool) {
	user, ok := c.Locals(principalKey).(identity.User)
	return user, ok
}

// SetCookie attaches the session token to the response.
func SetCookie(c *fiber.Ctx, token string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
