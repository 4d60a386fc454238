package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"agrimarket/internal/http/handlers"
	"agrimarket/internal/repos"
	"agrimarket/internal/services"
)

// Minimal app for guard testing: one user-gated route, one admin-gated route.
func newGuardedApp(t *testing.T) (*fiber.App, *services.AuthService) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	auth := services.NewAuthService(repos.NewUserRepo(db))

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(handlers.AttachUser(auth))

	app.Get("/api/orders", handlers.RequireUser(auth), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	admin := app.Group("/admin/api", handlers.RequireAdmin(auth))
	admin.Get("/orders", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })
	return app, auth
}

func get(t *testing.T, app *fiber.App, path, sid string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestRequireUser(t *testing.T) {
	app, auth := newGuardedApp(t)

	if got := get(t, app, "/api/orders", ""); got != http.StatusUnauthorized {
		t.Fatalf("anonymous: want 401, got %d", got)
	}
	if got := get(t, app, "/api/orders", "no-such-session"); got != http.StatusUnauthorized {
		t.Fatalf("dead session: want 401, got %d", got)
	}

	sid, _, err := auth.Login(context.Background(), "farmer@agrimarket.test", "Passw0rd!")
	if err != nil {
		t.Fatal(err)
	}
	if got := get(t, app, "/api/orders", sid); got != http.StatusOK {
		t.Fatalf("logged in: want 200, got %d", got)
	}
}

func TestRequireAdmin(t *testing.T) {
	app, auth := newGuardedApp(t)
	ctx := context.Background()

	if got := get(t, app, "/admin/api/orders", ""); got != http.StatusForbidden {
		t.Fatalf("anonymous: want 403, got %d", got)
	}

	userSID, _, err := auth.Login(ctx, "farmer@agrimarket.test", "Passw0rd!")
	if err != nil {
		t.Fatal(err)
	}
	if got := get(t, app, "/admin/api/orders", userSID); got != http.StatusForbidden {
		t.Fatalf("non-admin: want 403, got %d", got)
	}

	adminSID, _, err := auth.Login(ctx, "admin@agrimarket.test", "Passw0rd!")
	if err != nil {
		t.Fatal(err)
	}
	if got := get(t, app, "/admin/api/orders", adminSID); got != http.StatusOK {
		t.Fatalf("admin: want 200, got %d", got)
	}
}
