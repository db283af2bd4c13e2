package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"courtside/internal/cart"
	"courtside/internal/checkout"
	applog "courtside/internal/log"
	"courtside/internal/services"
	"courtside/internal/validate"
)

type CartHandler struct {
	Cart    *services.CartService
	TaxRate decimal.Decimal
}

// cartPayload is the JSON shape of a cart for API and fetch callers.
func cartPayload(st cart.State, taxRate decimal.Decimal) fiber.Map {
	items := st.Items()
	if items == nil {
		items = []cart.LineItem{}
	}
	return fiber.Map{
		"success": true,
		"items":   items,
		"summary": checkout.Summarize(st, taxRate),
	}
}

// lineKey reads the product id and size identifying a line item.
func lineKey(c *fiber.Ctx) (int64, int, bool) {
	id, ok := validate.ProductID(c.FormValue("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "id"})
		return 0, 0, false
	}
	size, err := formInt(c, "size")
	if err != nil || size < 0 {
		applog.Security(c, "validation.fail", map[string]any{"field": "size"})
		return 0, 0, false
	}
	return id, size, true
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	st := h.Cart.View(c.Cookies(sidCookie))
	if wantsJSON(c) {
		return c.JSON(cartPayload(st, h.TaxRate))
	}
	return render(c, "cart", fiber.Map{
		"Items":   st.Items(),
		"Summary": checkout.Summarize(st, h.TaxRate),
		"Err":     c.Query("err"),
	})
}

// Add puts a product into the session cart and returns to its page.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	id, size, ok := lineKey(c)
	if !ok {
		return h.reject(c, fiber.StatusBadRequest, "errors.badRequest")
	}
	qty := validate.Qty(c.FormValue("qty"))

	sid := ensureSID(c)
	st, err := h.Cart.Add(sid, id, size, qty)
	if err != nil {
		code := statusFor(err)
		if code == fiber.StatusInternalServerError {
			return err
		}
		applog.Security(c, "cart.add.reject", map[string]any{"product_id": id, "size": size, "err": err.Error()})
		if code == fiber.StatusNotFound {
			return h.reject(c, code, "errors.notFound")
		}
		return h.reject(c, code, "errors.badRequest")
	}
	applog.Debug(c, "cart.add", map[string]any{"product_id": id, "size": size, "qty": qty})

	if wantsJSON(c) {
		return c.JSON(cartPayload(st, h.TaxRate))
	}
	if c.FormValue("next") == "cart" {
		return c.Redirect("/cart", fiber.StatusSeeOther)
	}
	return c.Redirect(productPath(id)+"?added=1", fiber.StatusSeeOther)
}

// Update sets a line's quantity. Non-numeric input leaves the cart untouched.
func (h *CartHandler) Update(c *fiber.Ctx) error {
	id, size, ok := lineKey(c)
	if !ok {
		return h.reject(c, fiber.StatusBadRequest, "errors.badRequest")
	}
	st, err := h.Cart.Update(ensureSID(c), id, size, c.FormValue("qty"))
	if errors.Is(err, cart.ErrInvalidArgument) {
		applog.Security(c, "validation.fail", map[string]any{"field": "qty"})
		if wantsJSON(c) {
			return jsonError(c, fiber.StatusBadRequest, "invalid quantity")
		}
		return c.Redirect("/cart?err=qty", fiber.StatusSeeOther)
	}
	if err != nil {
		return err
	}
	if wantsJSON(c) {
		return c.JSON(cartPayload(st, h.TaxRate))
	}
	return c.Redirect("/cart", fiber.StatusSeeOther)
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	id, size, ok := lineKey(c)
	if !ok {
		return h.reject(c, fiber.StatusBadRequest, "errors.badRequest")
	}
	st := h.Cart.Remove(ensureSID(c), id, size)
	if wantsJSON(c) {
		return c.JSON(cartPayload(st, h.TaxRate))
	}
	return c.Redirect("/cart", fiber.StatusSeeOther)
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	h.Cart.Clear(c.Cookies(sidCookie))
	if wantsJSON(c) {
		return c.JSON(cartPayload(cart.State{}, h.TaxRate))
	}
	return c.Redirect("/cart", fiber.StatusSeeOther)
}

func (h *CartHandler) reject(c *fiber.Ctx, code int, msgKey string) error {
	if wantsJSON(c) {
		return jsonError(c, code, rejectText(code))
	}
	return page(c, code, msgKey)
}

func rejectText(code int) string {
	if code == fiber.StatusNotFound {
		return "product not found"
	}
	return "invalid request"
}
