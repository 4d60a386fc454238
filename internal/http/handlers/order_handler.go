package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "agrimarket/internal/log"
	"agrimarket/internal/services"
)

type OrderHandler struct {
	Order  *services.OrderService
	Market *services.MarketService
}

type placeOrderReq struct {
	Type      string   `json:"type"`
	Product   string   `json:"product"`
	Quantity  *float64 `json:"quantity"`
	Price     *float64 `json:"price"`
	ListingID int64    `json:"listing_id"`
}

// POST /api/order — requires login; the order is persisted first and any
// inventory adjustment happens best-effort behind it.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var req placeOrderReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Missing fields"})
	}

	u := currentUser(c)
	order, err := h.Order.Place(c.Context(), u.Email, services.PlaceOrderInput{
		Type:      req.Type,
		Product:   req.Product,
		Quantity:  req.Quantity,
		Price:     req.Price,
		ListingID: req.ListingID,
	})
	if err == services.ErrMissingFields {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Missing fields"})
	}
	if err != nil {
		applog.Error(c, "order.place.fail", err, map[string]any{"product": req.Product})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Could not place order"})
	}

	applog.Audit(c, "order.place", map[string]any{
		"order_id": order.ID,
		"type":     order.Type,
		"product":  order.Product,
		"quantity": order.Quantity,
	})
	return c.JSON(fiber.Map{"success": true, "order": order})
}

// GET /api/orders — the caller's own records; buys stay hidden from
// non-admins.
func (h *OrderHandler) ListMine(c *fiber.Ctx) error {
	u := currentUser(c)
	orders := h.Market.ListForUser(c.Context(), u.Email, u.IsAdmin())
	return c.JSON(fiber.Map{"success": true, "orders": orders})
}
