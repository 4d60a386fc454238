package main

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"agrimarket/internal/config"
	"agrimarket/internal/filestore"
	"agrimarket/internal/http/handlers"
	applog "agrimarket/internal/log"
	"agrimarket/internal/repos"
	"agrimarket/internal/services"
)

func openStores(cfg config.Config) (handlers.Stores, error) {
	if cfg.StoreBackend == "file" {
		return handlers.Stores{
			Listings: filestore.NewListings(cfg.DataDir),
			Products: filestore.NewProducts(cfg.DataDir),
			Deals:    filestore.NewDeals(cfg.DataDir),
			Users:    filestore.NewUsers(cfg.DataDir),
		}, nil
	}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return handlers.Stores{}, err
	}
	return handlers.Stores{
		Listings: repos.NewListingRepo(db),
		Products: repos.NewProductRepo(db),
		Deals:    repos.NewDealRepo(db),
		Users:    repos.NewUserRepo(db),
	}, nil
}

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	stores, err := openStores(cfg)
	if err != nil {
		log.Fatal(err)
	}

	authSvc := services.NewAuthService(stores.Users)
	priceSvc := services.NewPriceService(cfg.DataDir, cfg.PriceAPIURL, cfg.PriceAPIKey,
		time.Duration(cfg.PriceMaxAgeH)*time.Hour)

	// Daily price refresh touches only the price cache, never the listings.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go priceSvc.RunDailyRefresh(ctx, 24*time.Hour)

	engine := html.New("./web/templates", ".html")

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false, "message": "Something went wrong. Please try again.",
			})
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(handlers.AttachUser(authSvc))

	// ---------- Handlers ----------
	deps := handlers.NewDeps(stores, authSvc, priceSvc)

	// Pages
	app.Get("/", deps.MarketHandler.Page)
	app.Get("/login", deps.AuthHandler.LoginForm)

	// Auth (login throttled)
	app.Post("/auth/register", deps.AuthHandler.Register)
	app.Post("/auth/login_password", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"success": false, "message": "too many attempts"})
		},
	}), deps.AuthHandler.Login)
	app.Post("/logout", deps.AuthHandler.Logout)

	// Marketplace
	app.Get("/api/marketplace", deps.MarketHandler.List)
	app.Post("/api/marketplace", deps.MarketHandler.Create)
	app.Get("/api/products", deps.MarketHandler.PublicProducts)
	app.Get("/price", deps.PriceHandler.Get)

	// Orders (throttled: a burst of purchases is either abuse or a bug)
	orderLimiter := limiter.New(limiter.Config{Max: 30, Expiration: time.Minute})
	app.Post("/api/order", orderLimiter, handlers.RequireUser(authSvc), deps.OrderHandler.Place)
	app.Get("/api/orders", handlers.RequireUser(authSvc), deps.OrderHandler.ListMine)

	// Admin
	admin := app.Group("/admin/api", handlers.RequireAdmin(authSvc))
	admin.Get("/orders", deps.AdminHandler.ListOrders)
	admin.Post("/order/:id/delete", deps.AdminHandler.DeleteOrder)
	admin.Post("/order/:id/update", deps.AdminHandler.UpdateOrder)
	admin.Get("/today_deals", deps.AdminHandler.ListDeals)
	admin.Post("/today_deals", deps.AdminHandler.AddDeal)
	admin.Delete("/today_deals", deps.AdminHandler.RemoveDeal)
	admin.Get("/products", deps.AdminHandler.ListProducts)
	admin.Post("/products", deps.AdminHandler.UpsertProduct)
	admin.Post("/refresh_price", deps.AdminHandler.RefreshPrice)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
