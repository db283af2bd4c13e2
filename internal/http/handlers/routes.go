package handlers

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"courtside/internal/config"
	applog "courtside/internal/log"
)

// maxFormBody applies to every route except uploads, which get the configured limit.
const maxFormBody = 1 << 20

const uploadPath = "/api/admin/upload"

// NewApp builds the storefront with its middleware chain and routes.
func NewApp(cfg config.Config, d *Deps, views fiber.Views) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:        views,
		ErrorHandler: ErrorHandler,
		BodyLimit:    cfg.MaxUploadBytes(),
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(helmet.New(helmet.Config{CrossOriginEmbedderPolicy: "unsafe-none"}))
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/uploads/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return fiber.ErrTooManyRequests
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if c.Path() != uploadPath && len(c.Body()) > maxFormBody {
			applog.Security(c, "body.too_large", map[string]any{"bytes": len(c.Body())})
			return fiber.ErrRequestEntityTooLarge
		}
		return c.Next()
	})
	app.Use("/api", cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Csrf-Token",
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ContextKey:     localsCSRF,
		Extractor:      csrfToken,
		// Token-authenticated and JSON calls cannot be forged by a plain HTML form.
		Next: func(c *fiber.Ctx) bool {
			return bearerToken(c) != "" || strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON)
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"err": err.Error()})
			if isAPI(c) {
				return jsonError(c, fiber.StatusForbidden, "csrf check failed")
			}
			return c.Status(fiber.StatusForbidden).Render("notfound", withLocale(c, fiber.Map{"Message": "Security check failed. Please refresh and try again."}))
		},
	}))
	app.Use(d.Session)

	// ---------- Static assets ----------
	staticDir := filepath.Join(filepath.Dir(cfg.TemplatesDir), "static")
	app.Static("/static", staticDir)
	app.Get("/uploads/*", serveUpload(cfg.UploadDir))

	// ---------- Storefront ----------
	catalogLimiter := limiter.New(limiter.Config{
		Max:        30,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|catalog"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.catalog.hit", nil)
			if isAPI(c) {
				return jsonError(c, fiber.StatusTooManyRequests, "rate limit exceeded, retry soon")
			}
			return fiber.ErrTooManyRequests
		},
	})

	app.Get("/", d.Shop.Home)
	app.Get("/shop", catalogLimiter, d.Shop.Shop)
	app.Get("/product/:id", d.Shop.Detail)
	app.Post("/product/:id/buy", d.Shop.BuyNow)

	app.Get("/cart", d.Cart.View)
	app.Post("/cart", d.Cart.Add)
	app.Post("/cart/update", d.Cart.Update)
	app.Post("/cart/remove", d.Cart.Remove)
	app.Post("/cart/clear", d.Cart.Clear)
	app.Post("/checkout", d.Checkout.Submit)
	app.Post("/locale", d.Locale.Switch)

	// ---------- Public API ----------
	api := app.Group("/api")
	api.Get("/products", d.API.Products)
	api.Get("/catalog", catalogLimiter, d.API.CatalogPage)
	api.Get("/listings", catalogLimiter, d.API.Listings)
	api.Get("/facets", d.API.Facets)
	api.Get("/cart", d.API.CartJSON)
	api.Post("/analytics", d.API.TrackEvent)

	// ---------- Admin ----------
	loginLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|login"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			if isAPI(c) {
				return jsonError(c, fiber.StatusTooManyRequests, "too many attempts")
			}
			return render(c.Status(fiber.StatusTooManyRequests), "admin_login", fiber.Map{"Err": "admin.tooMany"})
		},
	})

	app.Get("/admin/login", d.Admin.LoginForm)
	app.Post("/admin/login", loginLimiter, d.Admin.Login)
	app.Post("/admin/logout", d.Admin.Logout)
	app.Get("/admin", RequireAdmin(d.Auth), d.Admin.Dashboard)

	api.Post("/admin/login", loginLimiter, d.Admin.APILogin)
	admin := api.Group("/admin", RequireAdmin(d.Auth))
	admin.Get("/products", d.Admin.ListProducts)
	admin.Post("/products", d.Admin.CreateProduct)
	admin.Put("/products", d.Admin.UpdateProduct)
	admin.Put("/products/:id", d.Admin.UpdateProduct)
	admin.Delete("/products", d.Admin.DeleteProduct)
	admin.Delete("/products/:id", d.Admin.DeleteProduct)
	admin.Post("/upload", d.Admin.Upload)
	admin.Get("/analytics", d.Admin.Analytics)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		if isAPI(c) {
			return jsonError(c, fiber.StatusNotFound, "not found")
		}
		return page(c, fiber.StatusNotFound, "errors.notFound")
	})

	return app
}

// csrfToken reads the token from the X-Csrf-Token header, falling back to the csrf form field.
func csrfToken(c *fiber.Ctx) (string, error) {
	if tok := c.Get("X-Csrf-Token"); tok != "" {
		return tok, nil
	}
	if tok := c.FormValue("csrf"); tok != "" {
		return tok, nil
	}
	return "", csrf.ErrMissingForm
}

// serveUpload serves files from dir, refusing anything that could leave it.
func serveUpload(dir string) fiber.Handler {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		// Block encoded traversal attempts as well as raw .. or null bytes
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "uploads.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "uploads.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(dir, clean), true)
	}
}
