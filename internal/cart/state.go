// Package cart holds per-session shopping carts. State is immutable; every change goes
// through Reduce so a mutation is always computed against one consistent snapshot.
package cart

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidArgument = errors.New("invalid argument")

// NoSize marks a line item for a product without a size variant.
const NoSize = 0

// Key identifies a line item. Size NoSize only matches items stored without a size.
type Key struct {
	ProductID int64 `json:"productId"`
	Size      int   `json:"size"`
}

// Snapshot is the product data captured when a line item is first created.
type Snapshot struct {
	ProductID     int64            `json:"productId"`
	Name          string           `json:"name"`
	Category      string           `json:"category"`
	Image         string           `json:"image,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Size          int              `json:"size"`
}

func (s Snapshot) Key() Key { return Key{ProductID: s.ProductID, Size: s.Size} }

type LineItem struct {
	Snapshot
	Quantity int `json:"quantity"`
}

func (li LineItem) LineTotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// State is a value; methods never modify the receiver.
type State struct {
	items []LineItem
}

// Items returns a copy of the line items in insertion order.
func (s State) Items() []LineItem {
	return slices.Clone(s.items)
}

func (s State) Len() int { return len(s.items) }

func (s State) IsEmpty() bool { return len(s.items) == 0 }

func (s State) Find(k Key) (LineItem, bool) {
	if i := s.index(k); i >= 0 {
		return s.items[i], true
	}
	return LineItem{}, false
}

func (s State) TotalItems() int {
	n := 0
	for _, li := range s.items {
		n += li.Quantity
	}
	return n
}

func (s State) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, li := range s.items {
		total = total.Add(li.LineTotal())
	}
	return total
}

func (s State) index(k Key) int {
	return slices.IndexFunc(s.items, func(li LineItem) bool { return li.Key() == k })
}

// Action is one state transition.
type Action interface {
	apply(State) (State, error)
}

// Add inserts Item with quantity 1, or increments the quantity of an existing line item
// with the same key. An existing item keeps the snapshot it was created with.
type Add struct {
	Item Snapshot
}

// Remove deletes the line item with Key. Missing keys are a no-op.
type Remove struct {
	Key Key
}

// SetQuantity replaces the quantity of the line item with Key; a quantity below 1 removes it.
type SetQuantity struct {
	Key      Key
	Quantity int
}

type Clear struct{}

func (a Add) apply(s State) (State, error) {
	if a.Item.Price.IsNegative() {
		return s, fmt.Errorf("add product %d: negative price %s: %w", a.Item.ProductID, a.Item.Price, ErrInvalidArgument)
	}
	if a.Item.Size < 0 {
		return s, fmt.Errorf("add product %d: negative size %d: %w", a.Item.ProductID, a.Item.Size, ErrInvalidArgument)
	}
	items := slices.Clone(s.items)
	if i := s.index(a.Item.Key()); i >= 0 {
		items[i].Quantity++
		return State{items: items}, nil
	}
	return State{items: append(items, LineItem{Snapshot: a.Item, Quantity: 1})}, nil
}

func (a Remove) apply(s State) (State, error) {
	i := s.index(a.Key)
	if i < 0 {
		return s, nil
	}
	return State{items: slices.Delete(slices.Clone(s.items), i, i+1)}, nil
}

func (a SetQuantity) apply(s State) (State, error) {
	if a.Quantity < 1 {
		return Remove{Key: a.Key}.apply(s)
	}
	i := s.index(a.Key)
	if i < 0 {
		return s, nil
	}
	items := slices.Clone(s.items)
	items[i].Quantity = a.Quantity
	return State{items: items}, nil
}

func (Clear) apply(State) (State, error) { return State{}, nil }

// Reduce returns the state after applying a. On error the input state is returned unchanged.
func Reduce(s State, a Action) (State, error) {
	if a == nil {
		return s, fmt.Errorf("nil action: %w", ErrInvalidArgument)
	}
	return a.apply(s)
}

// ParseQuantity parses a quantity from form input.
func ParseQuantity(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("quantity %q: %w", raw, ErrInvalidArgument)
	}
	return n, nil
}
