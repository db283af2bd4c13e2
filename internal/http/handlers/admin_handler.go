package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"courtside/internal/domain"
	applog "courtside/internal/log"
	"courtside/internal/repos"
	"courtside/internal/services"
	"courtside/internal/validate"
)

const (
	reportTopN = 10
	reportDays = 30
)

type AdminHandler struct {
	Auth    *services.AdminAuth
	Prods   *repos.ProductRepo
	Stats   *repos.AnalyticsRepo
	Media   *services.MediaService
	Catalog *services.CatalogService
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// GET /admin/login
func (h *AdminHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "admin_login", fiber.Map{"Err": ""})
}

// POST /admin/login
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	user := strings.TrimSpace(c.FormValue("username"))
	tok, exp, err := h.Auth.Login(user, c.FormValue("password"))
	if err != nil {
		applog.Security(c, "admin.login.fail", map[string]any{"user": user})
		return render(c.Status(fiber.StatusUnauthorized), "admin_login", fiber.Map{"Err": "admin.invalid"})
	}
	c.Cookie(&fiber.Cookie{
		Name:     adminCookie,
		Value:    tok,
		Path:     "/",
		Expires:  exp,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Secure:   false,
	})
	applog.Audit(c, "admin.login.success", map[string]any{"user": user})
	return c.Redirect("/admin", fiber.StatusSeeOther)
}

// POST /admin/logout
func (h *AdminHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     adminCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	applog.Audit(c, "admin.logout", nil)
	return c.Redirect("/admin/login", fiber.StatusSeeOther)
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	products, err := h.Prods.List()
	if err != nil {
		applog.Error(c, "admin.products.list.fail", err, nil)
		return page(c, fiber.StatusInternalServerError, "errors.badRequest")
	}
	rep, err := h.Stats.Report(c.UserContext(), reportTopN, reportDays)
	if err != nil {
		applog.Error(c, "admin.analytics.fail", err, nil)
	}
	return render(c, "admin_dashboard", fiber.Map{"Products": products, "Report": rep})
}

// POST /api/admin/login
func (h *AdminHandler) APILogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "body"})
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	tok, exp, err := h.Auth.Login(strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		applog.Security(c, "admin.login.fail", map[string]any{"user": req.Username, "api": true})
		return jsonError(c, fiber.StatusUnauthorized, "invalid credentials")
	}
	applog.Audit(c, "admin.login.success", map[string]any{"user": req.Username, "api": true})
	return c.JSON(fiber.Map{"success": true, "token": tok, "expiresAt": exp.UTC().Format(time.RFC3339)})
}

// GET /api/admin/products
func (h *AdminHandler) ListProducts(c *fiber.Ctx) error {
	f, err := h.Prods.Load()
	if err != nil {
		return err
	}
	return c.JSON(f)
}

// POST /api/admin/products
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	p, ok, err := h.productBody(c)
	if !ok {
		return err
	}
	created, err := h.Prods.Create(p)
	if err != nil {
		return h.writeFail(c, "admin.products.create.fail", err, p.ID)
	}
	applog.Audit(c, "admin.products.create", map[string]any{"product_id": created.ID, "name": created.Name})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "product": created})
}

// PUT /api/admin/products and PUT /api/admin/products/:id
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	p, ok, err := h.productBody(c)
	if !ok {
		return err
	}
	if raw := c.Params("id"); raw != "" {
		id, ok := validate.ProductID(raw)
		if !ok {
			return jsonError(c, fiber.StatusBadRequest, "invalid id")
		}
		p.ID = id
	}
	if p.ID <= 0 {
		return jsonError(c, fiber.StatusBadRequest, "id required")
	}
	updated, err := h.Prods.Update(p)
	if err != nil {
		return h.writeFail(c, "admin.products.update.fail", err, p.ID)
	}
	applog.Audit(c, "admin.products.update", map[string]any{"product_id": updated.ID})
	return c.JSON(fiber.Map{"success": true, "product": updated})
}

// DELETE /api/admin/products/:id, or with the id in the query or body
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	raw := c.Params("id", c.Query("id"))
	if raw == "" {
		var body struct {
			ID int64 `json:"id"`
		}
		if err := c.BodyParser(&body); err == nil && body.ID > 0 {
			return h.deleteByID(c, body.ID)
		}
	}
	id, ok := validate.ProductID(raw)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "id"})
		return jsonError(c, fiber.StatusBadRequest, "invalid id")
	}
	return h.deleteByID(c, id)
}

func (h *AdminHandler) deleteByID(c *fiber.Ctx, id int64) error {
	if err := h.Prods.Delete(id); err != nil {
		return h.writeFail(c, "admin.products.delete.fail", err, id)
	}
	applog.Audit(c, "admin.products.delete", map[string]any{"product_id": id})
	return c.JSON(fiber.Map{"success": true})
}

// POST /api/admin/upload
func (h *AdminHandler) Upload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		applog.Security(c, "upload.reject", map[string]any{"reason": "not_multipart"})
		return jsonError(c, fiber.StatusBadRequest, "multipart form required")
	}
	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["file"]
	}
	if len(files) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "no files")
	}
	media, err := h.Media.SaveAll(files)
	if errors.Is(err, services.ErrUnsupportedMedia) {
		applog.Security(c, "upload.reject", map[string]any{"reason": "type", "err": err.Error()})
		return jsonError(c, fiber.StatusBadRequest, "unsupported file type")
	}
	if err != nil {
		return err
	}
	applog.Audit(c, "admin.upload", map[string]any{"count": len(media)})
	return c.JSON(fiber.Map{"success": true, "files": media})
}

// GET /api/admin/analytics
func (h *AdminHandler) Analytics(c *fiber.Ctx) error {
	rep, err := h.Stats.Report(c.UserContext(), reportTopN, reportDays)
	if err != nil {
		return err
	}
	return c.JSON(rep)
}

// productBody decodes and validates an admin product payload. When ok is false the
// response has already been written and err is what the handler should return.
func (h *AdminHandler) productBody(c *fiber.Ctx) (domain.Product, bool, error) {
	var p domain.Product
	if err := c.BodyParser(&p); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "body", "err": err.Error()})
		return p, false, jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	courts := domain.CourtTypes
	if facets, err := h.Catalog.Facets(); err == nil {
		courts = facets.CourtTypeOptions
	}
	if err := validate.Product(p, courts); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "product", "err": err.Error()})
		return p, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid product",
			"details": strings.Split(err.Error(), "\n"),
		})
	}
	return p, true, nil
}

func (h *AdminHandler) writeFail(c *fiber.Ctx, action string, err error, id int64) error {
	code := statusFor(err)
	if code == fiber.StatusInternalServerError {
		applog.Error(c, action, err, map[string]any{"product_id": id})
		return jsonError(c, code, "could not save products")
	}
	applog.Security(c, action, map[string]any{"product_id": id, "err": err.Error()})
	return jsonError(c, code, err.Error())
}
