package handlers

import (
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"courtside/internal/i18n"
	applog "courtside/internal/log"
)

type LocaleHandler struct{}

// Switch stores the chosen language and sends the user back to the page they came from.
func (h *LocaleHandler) Switch(c *fiber.Ctx) error {
	loc, ok := i18n.ParseLocale(c.FormValue("locale"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "locale"})
		return page(c, fiber.StatusBadRequest, "errors.badRequest")
	}
	c.Cookie(&fiber.Cookie{
		Name:     localeCookie,
		Value:    string(loc),
		Path:     "/",
		Expires:  time.Now().AddDate(1, 0, 0),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect(backPath(c.Get(fiber.HeaderReferer)), fiber.StatusSeeOther)
}

// backPath keeps only the path and query of the referer so the redirect stays on this site.
func backPath(ref string) string {
	u, err := url.Parse(ref)
	if err != nil || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "/"
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
