package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"courtside/internal/analytics"
	"courtside/internal/cart"
	"courtside/internal/checkout"
	"courtside/internal/i18n"
)

var ErrEmptyCart = errors.New("cart is empty")

// Tracker accepts analytics events without blocking.
type Tracker interface {
	Track(e analytics.Event) bool
}

type CheckoutService struct {
	Carts   *cart.Registry
	Prods   ProductReader
	I18n    *i18n.Bundle
	Tracker Tracker
	Phone   string
	TaxRate decimal.Decimal
	BaseURL string
}

// Handoff is everything needed to send the customer to WhatsApp.
type Handoff struct {
	Summary checkout.Summary `json:"summary"`
	Message string           `json:"message"`
	URL     string           `json:"url"`
}

// Prepare summarises the session cart and records a purchase click.
func (s *CheckoutService) Prepare(sid string, loc i18n.Locale) (Handoff, error) {
	c, ok := s.Carts.Peek(sid)
	if !ok {
		return Handoff{}, ErrEmptyCart
	}
	st := c.State()
	if st.IsEmpty() {
		return Handoff{}, ErrEmptyCart
	}
	sum := checkout.Summarize(st, s.TaxRate)
	msg := sum.Message(s.I18n.Translator(loc))
	s.Tracker.Track(analytics.Event{Type: analytics.Purchase})
	return Handoff{Summary: sum, Message: msg, URL: checkout.WhatsAppURL(s.Phone, msg)}, nil
}

// BuyNow builds the hand-off for a single product bought from its page.
func (s *CheckoutService) BuyNow(productID int64, size, qty int, loc i18n.Locale) (Handoff, error) {
	qty = min(max(qty, 1), MaxLineQuantity)
	p, err := s.Prods.Get(productID)
	if err != nil {
		return Handoff{}, err
	}
	if !p.InStock {
		return Handoff{}, fmt.Errorf("product %d: %w", p.ID, ErrOutOfStock)
	}
	if size, err = ResolveSize(p, size); err != nil {
		return Handoff{}, err
	}

	st, err := cart.Reduce(cart.State{}, cart.Add{Item: Snapshot(p, size)})
	if err != nil {
		return Handoff{}, err
	}
	st, _ = cart.Reduce(st, cart.SetQuantity{Key: cart.Key{ProductID: p.ID, Size: size}, Quantity: qty})
	sum := checkout.Summarize(st, decimal.Zero)

	link := fmt.Sprintf("%s/product/%d", s.BaseURL, p.ID)
	msg := checkout.BuyNowMessage(s.I18n.Translator(loc), p.Name, qty, sum.Subtotal, link)
	s.Tracker.Track(analytics.Event{Type: analytics.Purchase, ProductID: p.ID, ProductName: p.Name})
	return Handoff{Summary: sum, Message: msg, URL: checkout.WhatsAppURL(s.Phone, msg)}, nil
}
