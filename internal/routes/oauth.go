package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/identra/identra/internal/config"
	"github.com/identra/identra/internal/identity"
	"github.com/identra/identra/internal/provider"
	"github.com/identra/identra/internal/session"
)

const (
	stateCookie    = "oauth_state"
	stateCookieTTL = 10 * time.Minute
)

// RegisterOAuthRoutes wires the federated login redirect and callback for
// every configured provider. Any failure in the exchange denies
// authentication and returns the user to the unauthenticated landing page.
func RegisterOAuthRoutes(r fiber.Router, registry *provider.Registry, ids *identity.Service, sessions *session.Manager, cfg config.Config, log *slog.Logger) {
	r.Get("/auth/:provider", func(c *fiber.Ctx) error {
		adapter, err := registry.Get(c.Params("provider"))
		if err != nil {
			return fiber.NewError(http.StatusNotFound, "unknown provider")
		}
		state := uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     stateCookie,
			Value:    state,
			Path:     "/",
			Expires:  time.Now().Add(stateCookieTTL),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.Redirect(adapter.AuthURL(state), fiber.StatusFound)
	})

	r.Get("/auth/:provider/callback", func(c *fiber.Ctx) error {
		adapter, err := registry.Get(c.Params("provider"))
		if err != nil {
			return fiber.NewError(http.StatusNotFound, "unknown provider")
		}

		state := c.Query("state")
		code := c.Query("code")
		saved := c.Cookies(stateCookie)
		c.ClearCookie(stateCookie)
		if code == "" || state == "" || state != saved {
			log.Warn("oauth callback rejected", slog.String("provider", string(adapter.Name())))
			return c.Redirect("/", fiber.StatusFound)
		}

		profile, err := adapter.Exchange(c.UserContext(), code)
		if err != nil {
			log.Warn("provider exchange failed", slog.String("provider", string(adapter.Name())), "error", err)
			return c.Redirect("/", fiber.StatusFound)
		}

		user, err := ids.ResolveProvider(c.UserContext(), profile)
		if err != nil {
			log.Error("resolve provider profile", slog.String("provider", string(adapter.Name())), "error", err)
			return c.Redirect("/", fiber.StatusFound)
		}

		token, err := sessions.Establish(c.UserContext(), user.ID)
		if err != nil {
			log.Error("establish session", "error", err)
			return c.Redirect("/", fiber.StatusFound)
		}
		session.SetCookie(c, token, cfg.SessionTTL)
		log.Info("federated login completed",
			slog.String("provider", string(adapter.Name())),
			slog.String("user_id", user.ID),
		)
		return c.Redirect("/profile", fiber.StatusFound)
	})
}
