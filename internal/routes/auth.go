package routes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/identra/identra/internal/config"
	"github.com/identra/identra/internal/identity"
	"github.com/identra/identra/internal/logging"
	"github.com/identra/identra/internal/middleware"
	"github.com/identra/identra/internal/session"
)

type credentialsRequest struct {
	Identifier  string `json:"identifier" form:"identifier"`
	Password    string `json:"password" form:"password"`
	DisplayName string `json:"display_name" form:"display_name"`
	Phone       string `json:"phone" form:"phone"`
}

// detach copies the parsed fields out of fasthttp's reused request buffer.
// Without this, strings persisted past the handler (the stored email/phone
// keys) are overwritten in place by the next request.
func (r *credentialsRequest) detach() {
	r.Identifier = utils.CopyString(r.Identifier)
	r.Password = utils.CopyString(r.Password)
	r.DisplayName = utils.CopyString(r.DisplayName)
	r.Phone = utils.CopyString(r.Phone)
}

// RegisterAuthRoutes wires the local-credential login and registration
// endpoints.
func RegisterAuthRoutes(r fiber.Router, ids *identity.Service, sessions *session.Manager, cfg config.Config, rateLimiter fiber.Handler, log *slog.Logger) {
	r.Get("/login", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"submit": "/login", "fields": []string{"identifier", "password"}})
	})

	login := func(c *fiber.Ctx) error {
		reqID, _ := c.Locals(middleware.RequestIDHeader).(string)
		log := logging.WithRequest(log, reqID)

		var req credentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "malformed request")
		}
		req.detach()
		user, err := ids.Authenticate(c.UserContext(), req.Identifier, req.Password)
		switch {
		case errors.Is(err, identity.ErrWrongMethod):
			return fiber.NewError(http.StatusUnauthorized, "this account signs in with a social provider")
		case errors.Is(err, identity.ErrNotFound), errors.Is(err, identity.ErrInvalidCredentials):
			// One message for both so the response never reveals which
			// field was wrong.
			return fiber.NewError(http.StatusUnauthorized, "invalid identifier or password")
		case err != nil:
			log.Error("login failed", "error", err)
			return fiber.NewError(http.StatusInternalServerError, "authentication unavailable")
		}

		token, err := sessions.Establish(c.UserContext(), user.ID)
		if err != nil {
			log.Error("establish session", "error", err)
			return fiber.NewError(http.StatusInternalServerError, "authentication unavailable")
		}
		session.SetCookie(c, token, cfg.SessionTTL)
		log.Info("login completed", slog.String("user_id", user.ID))
		return c.Redirect("/profile", fiber.StatusFound)
	}
	if rateLimiter != nil {
		r.Post("/login", rateLimiter, login)
	} else {
		r.Post("/login", login)
	}

	r.Get("/register", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"submit": "/register", "fields": []string{"identifier", "password", "display_name", "phone"}})
	})

	r.Post("/register", func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "malformed request")
		}
		req.detach()
		user, err := ids.Register(c.UserContext(), req.Identifier, req.Password, req.DisplayName, req.Phone)
		switch {
		case errors.Is(err, identity.ErrInvalidFormat), errors.Is(err, identity.ErrPasswordTooShort):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, identity.ErrDuplicateIdentity):
			return fiber.NewError(http.StatusConflict, "an account with this identifier already exists")
		case err != nil:
			log.Error("register failed", "error", err)
			return fiber.NewError(http.StatusInternalServerError, "registration unavailable")
		}
		log.Info("register completed", slog.String("user_id", user.ID))
		return c.Redirect("/login", fiber.StatusFound)
	})
}

// RegisterLogoutRoute wires session teardown. It sits behind the gate, which
// exempts the logout path for unverified users.
func RegisterLogoutRoute(r fiber.Router, sessions *session.Manager, gate fiber.Handler, log *slog.Logger) {
	r.Get("/logout", gate, func(c *fiber.Ctx) error {
		if token := c.Cookies(session.CookieName); token != "" {
			if err := sessions.Destroy(c.UserContext(), token); err != nil {
				log.Warn("destroy session", "error", err)
			}
		}
		session.ClearCookie(c)
		return c.Redirect("/", fiber.StatusFound)
	})
}
