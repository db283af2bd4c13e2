package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"courtside/internal/cart"
	"courtside/internal/i18n"
	applog "courtside/internal/log"
	"courtside/internal/repos"
	"courtside/internal/services"
)

const (
	localsLocale    = "locale"
	localsCartCount = "cart_count"
	localsCSRF      = "csrf"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["Locale"] = localeOf(c)
	data["CartCount"], _ = c.Locals(localsCartCount).(int)
	if sub, ok := c.Locals(applog.LocalsSubject).(string); ok {
		data["Admin"] = sub
	}
	// Pick up the token the CSRF middleware put into Locals
	tok, _ := c.Locals(localsCSRF).(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

// page renders the friendly error view with a translated message.
func page(c *fiber.Ctx, status int, msgKey string) error {
	return c.Status(status).Render("notfound", withLocale(c, fiber.Map{"MessageKey": msgKey}))
}

func withLocale(c *fiber.Ctx, data fiber.Map) fiber.Map {
	data["Locale"] = localeOf(c)
	return data
}

func localeOf(c *fiber.Ctx) i18n.Locale {
	l, _ := c.Locals(localsLocale).(i18n.Locale)
	return l
}

func isAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}

func wantsJSON(c *fiber.Ctx) bool {
	return isAPI(c) || strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON)
}

func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repos.ErrProductNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, repos.ErrDuplicateProduct):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrBadCreds), errors.Is(err, services.ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrUnknownSize),
		errors.Is(err, services.ErrOutOfStock),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrUnsupportedMedia),
		errors.Is(err, cart.ErrInvalidArgument):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler logs the failure and answers with the friendly view, or JSON under /api.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	msg := "Something went wrong. Please try again."
	switch {
	case code == fiber.StatusRequestEntityTooLarge:
		msg = "Request too large."
	case code == fiber.StatusNotFound:
		msg = "Page not found."
	case code < 500:
		msg = "Request rejected."
	}
	if code >= 500 {
		applog.Error(c, "server.error", err, nil)
	} else {
		applog.Security(c, "request.rejected", map[string]any{"code": code})
	}
	if isAPI(c) {
		return jsonError(c, code, msg)
	}
	if rerr := c.Status(code).Render("notfound", withLocale(c, fiber.Map{"Message": msg})); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}
