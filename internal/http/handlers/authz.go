package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "courtside/internal/log"
	"courtside/internal/services"
)

const adminCookie = "admin_token"

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireAdmin accepts a session token from the Authorization header or the admin cookie.
// API callers get 401, browsers are sent to the login page.
func RequireAdmin(auth *services.AdminAuth) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearerToken(c)
		if tok == "" {
			tok = c.Cookies(adminCookie)
		}
		if tok == "" {
			applog.Security(c, "access.denied.admin", map[string]any{"reason": "no_token"})
			return deny(c)
		}
		sub, err := auth.Verify(tok)
		if err != nil {
			applog.Security(c, "access.denied.admin", map[string]any{"reason": "invalid_token"})
			return deny(c)
		}
		c.Locals(applog.LocalsSubject, sub)
		return c.Next()
	}
}

func deny(c *fiber.Ctx) error {
	if isAPI(c) {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.Redirect("/admin/login")
}
