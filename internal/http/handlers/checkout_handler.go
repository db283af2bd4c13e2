package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "courtside/internal/log"
	"courtside/internal/services"
)

type CheckoutHandler struct {
	Checkout *services.CheckoutService
}

// Submit builds the WhatsApp order message for the session cart and redirects to it.
// The cart is kept; the customer may come back and change it.
func (h *CheckoutHandler) Submit(c *fiber.Ctx) error {
	ho, err := h.Checkout.Prepare(c.Cookies(sidCookie), localeOf(c))
	if errors.Is(err, services.ErrEmptyCart) {
		applog.Security(c, "checkout.empty", nil)
		if wantsJSON(c) {
			return jsonError(c, fiber.StatusBadRequest, "cart is empty")
		}
		return c.Redirect("/cart", fiber.StatusSeeOther)
	}
	if err != nil {
		return err
	}
	applog.Info(c, "checkout.handoff", map[string]any{
		"items": ho.Summary.TotalItems,
		"total": ho.Summary.Total.StringFixed(2),
	})
	if wantsJSON(c) {
		return c.JSON(fiber.Map{"success": true, "url": ho.URL, "message": ho.Message, "summary": ho.Summary})
	}
	return c.Redirect(ho.URL, fiber.StatusSeeOther)
}
