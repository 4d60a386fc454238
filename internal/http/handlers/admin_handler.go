package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"agrimarket/internal/domain"
	applog "agrimarket/internal/log"
	"agrimarket/internal/services"
	"agrimarket/internal/store"
)

type AdminHandler struct {
	Market   *services.MarketService
	Deals    *services.DealsService
	Listings store.ListingStore
	Products store.ProductStore
	Prices   *services.PriceService
}

// GET /admin/api/orders?type=&limit=
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	orders := h.Market.ListAll(c.Context(), c.Query("type"), limit)
	return c.JSON(fiber.Map{"success": true, "orders": orders})
}

// POST /admin/api/order/:id/delete
func (h *AdminHandler) DeleteOrder(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid id"})
	}
	if err := h.Listings.Delete(c.Context(), id); err != nil {
		applog.Error(c, "admin.order.delete.fail", err, map[string]any{"order_id": id})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "could not delete order"})
	}
	applog.Audit(c, "admin.order.delete", map[string]any{"order_id": id})
	return c.JSON(fiber.Map{"success": true})
}

type updateOrderReq struct {
	Status   *string  `json:"status"`
	Price    *float64 `json:"price"`
	Quantity *float64 `json:"quantity"`
}

// POST /admin/api/order/:id/update — status/price/quantity only; quantity
// never goes negative.
func (h *AdminHandler) UpdateOrder(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid id"})
	}
	var req updateOrderReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "bad request body"})
	}
	upd := domain.ListingUpdate{Status: req.Status, Price: req.Price, Quantity: req.Quantity}
	if upd.Quantity != nil && *upd.Quantity < 0 {
		zero := 0.0
		upd.Quantity = &zero
	}
	if upd.Empty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "nothing to update"})
	}
	if err := h.Listings.Update(c.Context(), id, upd); err != nil {
		applog.Error(c, "admin.order.update.fail", err, map[string]any{"order_id": id})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "could not update order"})
	}
	applog.Audit(c, "admin.order.update", map[string]any{"order_id": id})
	return c.JSON(fiber.Map{"success": true})
}

type dealReq struct {
	Action string `json:"action"`
	ID     int64  `json:"id"`
}

// GET /admin/api/today_deals
func (h *AdminHandler) ListDeals(c *fiber.Ctx) error {
	ids, items, err := h.Deals.List(c.Context())
	if err != nil {
		applog.Error(c, "admin.deals.list.fail", err, nil)
		return c.JSON(fiber.Map{"success": true, "ids": []int64{}, "items": []any{}})
	}
	return c.JSON(fiber.Map{"success": true, "ids": ids, "items": items})
}

// POST /admin/api/today_deals {action:"add", id}
func (h *AdminHandler) AddDeal(c *fiber.Ctx) error {
	var req dealReq
	if err := c.BodyParser(&req); err != nil || req.Action != "add" || req.ID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "id and action=add required"})
	}
	ids, err := h.Deals.Add(c.Context(), req.ID)
	if err != nil {
		applog.Error(c, "admin.deals.add.fail", err, map[string]any{"id": req.ID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "could not save deals"})
	}
	applog.Audit(c, "admin.deals.add", map[string]any{"id": req.ID})
	return c.JSON(fiber.Map{"success": true, "ids": ids})
}

// DELETE /admin/api/today_deals {action:"remove", id}
func (h *AdminHandler) RemoveDeal(c *fiber.Ctx) error {
	var req dealReq
	if err := c.BodyParser(&req); err != nil || req.Action != "remove" || req.ID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "id and action=remove required"})
	}
	ids, err := h.Deals.Remove(c.Context(), req.ID)
	if err != nil {
		applog.Error(c, "admin.deals.remove.fail", err, map[string]any{"id": req.ID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "could not save deals"})
	}
	applog.Audit(c, "admin.deals.remove", map[string]any{"id": req.ID})
	return c.JSON(fiber.Map{"success": true, "ids": ids})
}

// GET /admin/api/products — full, unredacted catalog.
func (h *AdminHandler) ListProducts(c *fiber.Ctx) error {
	prods, err := h.Products.List(c.Context())
	if err != nil {
		applog.Error(c, "admin.products.list.fail", err, nil)
		return c.JSON(fiber.Map{"success": true, "products": []any{}})
	}
	return c.JSON(fiber.Map{"success": true, "products": prods})
}

// POST /admin/api/products — create or replace a catalog entry.
func (h *AdminHandler) UpsertProduct(c *fiber.Ctx) error {
	var p domain.Product
	if err := c.BodyParser(&p); err != nil || p.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "product name required"})
	}
	if err := h.Products.Upsert(c.Context(), p); err != nil {
		applog.Error(c, "admin.products.save.fail", err, map[string]any{"name": p.Name})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "could not save product"})
	}
	applog.Audit(c, "admin.products.save", map[string]any{"name": p.Name})
	return c.JSON(fiber.Map{"success": true})
}

// POST /admin/api/refresh_price?commodity=
func (h *AdminHandler) RefreshPrice(c *fiber.Ctx) error {
	commodity := c.Query("commodity")
	entry, err := h.Prices.Refresh(c.Context(), commodity)
	if err != nil {
		applog.Error(c, "admin.price.refresh.fail", err, map[string]any{"commodity": commodity})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	applog.Audit(c, "admin.price.refresh", map[string]any{"commodity": commodity, "rows": len(entry.Items)})
	return c.JSON(fiber.Map{"success": true, "fetched_at": entry.FetchedAt, "items": entry.Items})
}
