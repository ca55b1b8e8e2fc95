// Package kyc implements the verification gate and document intake.
package kyc

import (
	"github.com/gofiber/fiber/v2"

	"github.com/identra/identra/internal/identity"
	"github.com/identra/identra/internal/session"
)

// Decision is the gate's verdict for a request.
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectVerify
)

const (
	loginPath  = "/login"
	verifyPath = "/kyc-verify"
	logoutPath = "/logout"
)

// exemptPaths are reachable by a signed-in but unverified user: the
// verification flow itself and logout. Matched by exact path.
var exemptPaths = map[string]struct{}{
	verifyPath: {},
	logoutPath: {},
}

// Decide evaluates the gate for a principal and requested path. It is pure
// and reads no shared state; callers pass the freshly loaded user so a
// status change takes effect on the very next request.
func Decide(user *identity.User, path string) Decision {
	if user == nil {
		return RedirectLogin
	}
	if user.Verified() {
		return Allow
	}
	if _, ok := exemptPaths[path]; ok {
		return Allow
	}
	return RedirectVerify
}

// Gate enforces Decide before every protected handler.
func Gate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var user *identity.User
		if u, ok := session.Principal(c); ok {
			user = &u
		}
		switch Decide(user, c.Path()) {
		case RedirectLogin:
			return c.Redirect(loginPath, fiber.StatusFound)
		case RedirectVerify:
			return c.Redirect(verifyPath, fiber.StatusFound)
		default:
			return c.Next()
		}
	}
}
