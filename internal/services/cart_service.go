package services

import (
	"errors"
	"fmt"

	"courtside/internal/cart"
	"courtside/internal/domain"
)

var (
	ErrUnknownSize = errors.New("size not offered for product")
	ErrOutOfStock  = errors.New("product is out of stock")
)

// MaxLineQuantity caps a single add or update.
const MaxLineQuantity = 50

type CartService struct {
	Carts *cart.Registry
	Prods ProductReader
}

func NewCartService(carts *cart.Registry, prods ProductReader) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

// ResolveSize maps a requested size onto the sizes p offers. Size 0 on a sized product
// selects its first size.
func ResolveSize(p domain.Product, size int) (int, error) {
	if len(p.Sizes) == 0 {
		if size != cart.NoSize {
			return 0, fmt.Errorf("product %d size %d: %w", p.ID, size, ErrUnknownSize)
		}
		return cart.NoSize, nil
	}
	if size == cart.NoSize {
		return p.Sizes[0], nil
	}
	if !p.OffersSize(size) {
		return 0, fmt.Errorf("product %d size %d: %w", p.ID, size, ErrUnknownSize)
	}
	return size, nil
}

// Snapshot captures the catalog fields stored on a new line item.
func Snapshot(p domain.Product, size int) cart.Snapshot {
	return cart.Snapshot{
		ProductID:     p.ID,
		Name:          p.Name,
		Category:      p.Category,
		Image:         p.Image,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Size:          size,
	}
}

// Add puts qty units of the product into the session cart in one dispatch.
func (s *CartService) Add(sid string, productID int64, size, qty int) (cart.State, error) {
	qty = min(max(qty, 1), MaxLineQuantity)
	p, err := s.Prods.Get(productID)
	if err != nil {
		return cart.State{}, err
	}
	if !p.InStock {
		return cart.State{}, fmt.Errorf("product %d: %w", p.ID, ErrOutOfStock)
	}
	if size, err = ResolveSize(p, size); err != nil {
		return cart.State{}, err
	}
	add := cart.Add{Item: Snapshot(p, size)}
	actions := make([]cart.Action, qty)
	for i := range actions {
		actions[i] = add
	}
	return s.Carts.Get(sid).Dispatch(actions...)
}

// Update sets the quantity from raw form input; below 1 removes the line.
func (s *CartService) Update(sid string, productID int64, size int, rawQty string) (cart.State, error) {
	qty, err := cart.ParseQuantity(rawQty)
	if err != nil {
		return s.View(sid), err
	}
	qty = min(qty, MaxLineQuantity)
	return s.Carts.Get(sid).Dispatch(cart.SetQuantity{Key: cart.Key{ProductID: productID, Size: size}, Quantity: qty})
}

func (s *CartService) Remove(sid string, productID int64, size int) cart.State {
	st, _ := s.Carts.Get(sid).Dispatch(cart.Remove{Key: cart.Key{ProductID: productID, Size: size}})
	return st
}

func (s *CartService) Clear(sid string) {
	if c, ok := s.Carts.Peek(sid); ok {
		c.Clear()
	}
}

// View returns the session's cart without creating one.
func (s *CartService) View(sid string) cart.State {
	if c, ok := s.Carts.Peek(sid); ok {
		return c.State()
	}
	return cart.State{}
}
