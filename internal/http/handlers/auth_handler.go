package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "agrimarket/internal/log"
	"agrimarket/internal/services"
	"agrimarket/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func (h *AuthHandler) setSID(c *fiber.Ctx, sid string) {
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false, // enable behind TLS
	})
}

// GET /login
func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{})
}

type registerReq struct {
	Email    string `json:"email" form:"email"`
	Name     string `json:"name" form:"name"`
	Password string `json:"password" form:"password"`
}

// POST /auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "bad request body"})
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid email"})
	}
	name, ok := validate.Name(req.Name)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid name"})
	}
	if !validate.Password(req.Password) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "password too weak"})
	}

	u, err := h.Auth.Register(c.Context(), email, name, req.Password)
	if err == services.ErrUserExists {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "message": "account already exists"})
	}
	if err != nil {
		applog.Error(c, "auth.register.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "could not register"})
	}

	// open a session right away
	sid, _, err := h.Auth.Login(c.Context(), u.Email, req.Password)
	if err == nil {
		h.setSID(c, sid)
	}
	applog.Audit(c, "auth.register", map[string]any{"email": u.Email})
	return c.JSON(fiber.Map{"success": true, "user": fiber.Map{"email": u.Email, "name": u.Name}})
}

type loginReq struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// POST /auth/login_password
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "bad request body"})
	}
	sid, u, err := h.Auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": req.Email})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "invalid email or password"})
	}
	h.setSID(c, sid)
	applog.Audit(c, "auth.login", map[string]any{"email": u.Email})
	return c.JSON(fiber.Map{"success": true, "user": fiber.Map{"email": u.Email, "name": u.Name, "admin": u.IsAdmin()}})
}

// POST /logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sid := c.Cookies("sid"); sid != "" {
		h.Auth.Logout(sid)
	}
	c.ClearCookie("sid")
	return c.JSON(fiber.Map{"success": true})
}
