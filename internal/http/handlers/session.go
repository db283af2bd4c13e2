package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"courtside/internal/i18n"
)

const (
	sidCookie    = "sid"
	localeCookie = "locale"
)

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies(sidCookie)
	if _, err := uuid.Parse(sid); err != nil {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     sidCookie,
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false,
		})
	}
	return sid
}

// Session resolves the UI locale and the cart badge count for every request.
func (d *Deps) Session(c *fiber.Ctx) error {
	loc, ok := i18n.ParseLocale(c.Cookies(localeCookie))
	if !ok {
		loc = d.Bundle.Default()
	}
	c.Locals(localsLocale, loc)
	if sid := c.Cookies(sidCookie); sid != "" {
		c.Locals(localsCartCount, d.CartSvc.View(sid).TotalItems())
	}
	return c.Next()
}
