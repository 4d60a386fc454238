package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "agrimarket/internal/log"
	"agrimarket/internal/services"
)

type PriceHandler struct {
	Prices *services.PriceService
}

// GET /price?commodity= — served from the price cache; a stale entry
// triggers a refresh inline.
func (h *PriceHandler) Get(c *fiber.Ctx) error {
	commodity := c.Query("commodity")
	if commodity == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "commodity required"})
	}
	entry, err := h.Prices.Get(c.Context(), commodity)
	if err != nil {
		applog.Error(c, "price.get.fail", err, map[string]any{"commodity": commodity})
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"success": false, "message": "price data unavailable"})
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"commodity":  commodity,
		"fetched_at": entry.FetchedAt,
		"items":      entry.Items,
	})
}
