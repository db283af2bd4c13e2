package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"courtside/internal/analytics"
	applog "courtside/internal/log"
	"courtside/internal/repos"
	"courtside/internal/services"
)

type APIHandler struct {
	Catalog *services.CatalogService
	Prods   *repos.ProductRepo
	Cart    *services.CartService
	Tracker services.Tracker
	TaxRate decimal.Decimal
}

// GET /api/products returns the data file as stored.
func (h *APIHandler) Products(c *fiber.Ctx) error {
	f, err := h.Prods.Load()
	if err != nil {
		applog.Error(c, "api.products.load.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "products unavailable")
	}
	return c.JSON(f)
}

// GET /api/catalog
func (h *APIHandler) CatalogPage(c *fiber.Ctx) error {
	p, bad := catalogParams(c)
	if bad != "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid "+bad)
	}
	return c.JSON(h.Catalog.Browse(p))
}

// GET /api/listings is the catalog with one entry per product size.
func (h *APIHandler) Listings(c *fiber.Ctx) error {
	p, bad := catalogParams(c)
	if bad != "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid "+bad)
	}
	return c.JSON(h.Catalog.BrowseListings(p))
}

// GET /api/facets
func (h *APIHandler) Facets(c *fiber.Ctx) error {
	f, err := h.Catalog.Facets()
	if err != nil {
		applog.Error(c, "api.facets.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "products unavailable")
	}
	return c.JSON(f)
}

// GET /api/cart
func (h *APIHandler) CartJSON(c *fiber.Ctx) error {
	return c.JSON(cartPayload(h.Cart.View(c.Cookies(sidCookie)), h.TaxRate))
}

type trackRequest struct {
	Type        string `json:"type"`
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
}

// POST /api/analytics queues an event and answers before it is stored.
func (h *APIHandler) TrackEvent(c *fiber.Ctx) error {
	var req trackRequest
	if err := c.BodyParser(&req); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "body"})
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	typ, ok := analytics.ParseEventType(req.Type)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "unknown event type")
	}
	e := analytics.Event{Type: typ, ProductID: req.ProductID, ProductName: req.ProductName, OccurredAt: time.Now().UTC()}
	if err := e.Validate(); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "event", "err": err.Error()})
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	accepted := h.Tracker.Track(e)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"success": true, "queued": accepted})
}
