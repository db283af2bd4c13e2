package handlers

import (
	"courtside/internal/cart"
	"courtside/internal/config"
	"courtside/internal/i18n"
	"courtside/internal/repos"
	"courtside/internal/services"
)

type Deps struct {
	Shop     *ShopHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Locale   *LocaleHandler
	Admin    *AdminHandler
	API      *APIHandler

	Auth    *services.AdminAuth
	Carts   *cart.Registry
	CartSvc *services.CartService
	Bundle  *i18n.Bundle
}

func NewDeps(cfg config.Config, prods *repos.ProductRepo, stats *repos.AnalyticsRepo, tracker services.Tracker, bundle *i18n.Bundle) (*Deps, error) {
	auth, err := services.NewAdminAuth(cfg.AdminUser, cfg.AdminPassword, cfg.AdminPasswordHash, cfg.JWTSecret, cfg.AdminSessionTTL)
	if err != nil {
		return nil, err
	}

	carts := cart.NewRegistry()
	catalogSvc := services.NewCatalogService(prods, cfg.PageSize)
	cartSvc := services.NewCartService(carts, prods)
	checkoutSvc := &services.CheckoutService{
		Carts:   carts,
		Prods:   prods,
		I18n:    bundle,
		Tracker: tracker,
		Phone:   cfg.WhatsAppPhone,
		TaxRate: cfg.TaxRate,
		BaseURL: cfg.BaseURL,
	}
	mediaSvc := services.NewMediaService(cfg.UploadDir, "/uploads")

	return &Deps{
		Shop:     &ShopHandler{Catalog: catalogSvc, Checkout: checkoutSvc, Tracker: tracker},
		Cart:     &CartHandler{Cart: cartSvc, TaxRate: cfg.TaxRate},
		Checkout: &CheckoutHandler{Checkout: checkoutSvc},
		Locale:   &LocaleHandler{},
		Admin:    &AdminHandler{Auth: auth, Prods: prods, Stats: stats, Media: mediaSvc, Catalog: catalogSvc},
		API:      &APIHandler{Catalog: catalogSvc, Prods: prods, Cart: cartSvc, Tracker: tracker, TaxRate: cfg.TaxRate},
		Auth:     auth,
		Carts:    carts,
		CartSvc:  cartSvc,
		Bundle:   bundle,
	}, nil
}
