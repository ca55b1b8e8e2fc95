package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/identra/identra/internal/session"
)

// RegisterProfileRoutes wires the protected profile page. Only verified
// users get past the gate.
func RegisterProfileRoutes(r fiber.Router, gate fiber.Handler) {
	r.Get("/profile", gate, func(c *fiber.Ctx) error {
		user, ok := session.Principal(c)
		if !ok {
			return c.Redirect("/login", fiber.StatusFound)
		}
		return c.JSON(fiber.Map{
			"user_id":      user.ID,
			"display_name": user.DisplayName,
			"email":        user.Email,
			"phone":        user.Phone,
			"avatar":       user.AvatarRef,
			"kyc_status":   user.KYCStatus,
			"created_at":   user.CreatedAt,
		})
	})
}
