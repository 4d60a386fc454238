package handlers

import (
	"github.com/gofiber/fiber/v2"

	"agrimarket/internal/domain"
	applog "agrimarket/internal/log"
	"agrimarket/internal/services"
)

// AttachUser resolves the sid cookie to an account for downstream handlers
// and templates. Never blocks the request.
func AttachUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := auth.CurrentUser(c.Context(), sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	}
}

// RequireUser rejects unauthenticated API calls before any store access.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if u := currentUser(c); u != nil {
			return c.Next()
		}
		sid := c.Cookies("sid")
		if sid != "" {
			if u, err := auth.CurrentUser(c.Context(), sid); err == nil && u != nil {
				c.Locals("user", u)
				return c.Next()
			}
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "login required"})
	}
}

// RequireAdmin gates the curator and admin-order surfaces.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil {
			if sid := c.Cookies("sid"); sid != "" {
				if su, err := auth.CurrentUser(c.Context(), sid); err == nil {
					u = su
					c.Locals("user", u)
				}
			}
		}
		if !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", nil)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "admin required"})
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}
