package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"courtside/internal/analytics"
	"courtside/internal/domain"
	applog "courtside/internal/log"
	"courtside/internal/repos"
	"courtside/internal/services"
	"courtside/internal/validate"
)

const featuredCount = 8

type ShopHandler struct {
	Catalog  *services.CatalogService
	Checkout *services.CheckoutService
	Tracker  services.Tracker
}

func (h *ShopHandler) Home(c *fiber.Ctx) error {
	return render(c, "home", fiber.Map{
		"Featured": h.Catalog.Featured(featuredCount),
	})
}

// Shop renders the filterable shop grid.
func (h *ShopHandler) Shop(c *fiber.Ctx) error {
	p, bad := catalogParams(c)
	view := h.Catalog.Browse(p)
	facets, _ := h.Catalog.Facets()
	links, prev, next := pageLinks(c, view.Page.Page, view.TotalPages)

	status := fiber.StatusOK
	if bad != "" {
		status = fiber.StatusBadRequest
	}
	return render(c.Status(status), "catalog", fiber.Map{
		"View":      view,
		"Facets":    facets,
		"Params":    p,
		"Query":     p.Search,
		"SortMode":  string(p.Sort),
		"Invalid":   bad,
		"PageLinks": links,
		"PrevURL":   prev,
		"NextURL":   next,
		"MinRaw":    c.Query("min"),
		"MaxRaw":    c.Query("max"),
	})
}

// Detail shows one product and records a view.
func (h *ShopHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ProductID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "id", "value": c.Params("id")})
		return page(c, fiber.StatusNotFound, "errors.notFound")
	}
	p, err := h.Catalog.Get(id)
	if errors.Is(err, repos.ErrProductNotFound) {
		return page(c, fiber.StatusNotFound, "errors.notFound")
	}
	if err != nil {
		return err
	}
	h.Tracker.Track(analytics.Event{Type: analytics.View, ProductID: p.ID, ProductName: p.Name})

	gallery := make([]domain.Media, 0, len(p.Media)+1)
	if p.Image != "" {
		gallery = append(gallery, domain.Media{Type: domain.MediaImage, URL: p.Image})
	}
	for _, m := range p.Media {
		if m.URL != p.Image {
			gallery = append(gallery, m)
		}
	}
	return render(c, "product", fiber.Map{
		"Product":  p,
		"Gallery":  gallery,
		"Discount": p.DiscountPercent(),
		"Added":    c.Query("added") == "1",
	})
}

// BuyNow skips the cart and hands a single product straight to WhatsApp.
func (h *ShopHandler) BuyNow(c *fiber.Ctx) error {
	id, ok := validate.ProductID(c.Params("id"))
	if !ok {
		return page(c, fiber.StatusNotFound, "errors.notFound")
	}
	size, err := formInt(c, "size")
	if err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "size"})
		return page(c, fiber.StatusBadRequest, "errors.badRequest")
	}
	qty := validate.Qty(c.FormValue("qty"))

	ho, err := h.Checkout.BuyNow(id, size, qty, localeOf(c))
	if err != nil {
		code := statusFor(err)
		if code == fiber.StatusInternalServerError {
			return err
		}
		applog.Security(c, "buynow.reject", map[string]any{"product_id": id, "size": size, "err": err.Error()})
		if code == fiber.StatusNotFound {
			return page(c, code, "errors.notFound")
		}
		return page(c, code, "errors.badRequest")
	}
	applog.Info(c, "checkout.buynow", map[string]any{"product_id": id, "qty": qty, "total": ho.Summary.Subtotal.StringFixed(2)})
	return c.Redirect(ho.URL, fiber.StatusSeeOther)
}

func productPath(id int64) string {
	return "/product/" + strconv.FormatInt(id, 10)
}
