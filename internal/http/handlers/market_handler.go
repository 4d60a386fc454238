package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "agrimarket/internal/log"
	"agrimarket/internal/services"
	"agrimarket/internal/store"
	"agrimarket/internal/validate"
)

type MarketHandler struct {
	Market   *services.MarketService
	Products store.ProductStore
	Auth     *services.AuthService
}

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// GET /api/marketplace?q=&today=
func (h *MarketHandler) List(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q != "" {
		var ok bool
		if q, ok = validate.Q(q); !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "q"})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid query"})
		}
	}
	items := h.Market.Browse(c.Context(), q, parseFlag(c.Query("today")))
	return c.JSON(fiber.Map{"success": true, "items": items})
}

// GET / renders the marketplace page with the same public projection.
func (h *MarketHandler) Page(c *fiber.Ctx) error {
	items := h.Market.Browse(c.Context(), "", false)
	return render(c, "market", fiber.Map{"Items": items})
}

type createListingReq struct {
	Product  string   `json:"product"`
	Quantity *float64 `json:"quantity"`
	Price    *float64 `json:"price"`
	Location string   `json:"location"`
	Notes    string   `json:"notes"`
	Contact  string   `json:"contact"`
	Seller   string   `json:"seller"`
	Icon     string   `json:"icon"`
}

// POST /api/marketplace creates a sell listing. Login is optional; anonymous
// sellers can leave a contact.
func (h *MarketHandler) Create(c *fiber.Ctx) error {
	var req createListingReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "bad request body"})
	}
	if req.Product == "" || req.Quantity == nil || req.Price == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "product, quantity and price required"})
	}

	user := ""
	if u := currentUser(c); u != nil {
		user = u.Email
	}
	contact := req.Contact
	if contact == "" {
		contact = req.Seller
	}

	icon := req.Icon
	if icon == "" {
		icon = "/icons/" + validate.IconSlug(req.Product)
	}

	item, err := h.Market.CreateListing(c.Context(), user, services.CreateListingInput{
		Product:  req.Product,
		Quantity: *req.Quantity,
		Price:    *req.Price,
		Contact:  contact,
		Icon:     icon,
		Location: req.Location,
		Notes:    req.Notes,
	})
	if err == services.ErrBadListing {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	if err != nil {
		applog.Error(c, "market.listing.save", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Server error saving listing"})
	}

	applog.Audit(c, "market.listing.create", map[string]any{"id": item.ID, "product": item.Product})
	return c.JSON(fiber.Map{"success": true, "item": item})
}

// GET /api/products — available catalog entries only.
func (h *MarketHandler) PublicProducts(c *fiber.Ctx) error {
	prods, err := h.Products.ListAvailable(c.Context())
	if err != nil {
		applog.Error(c, "products.list", err, nil)
		return c.JSON(fiber.Map{"success": true, "products": []any{}})
	}
	return c.JSON(fiber.Map{"success": true, "products": prods})
}
