// Package analytics records storefront events without ever blocking the request that
// produced them.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidEvent = errors.New("invalid analytics event")

type EventType string

const (
	View     EventType = "view"
	Purchase EventType = "purchase"
)

func ParseEventType(s string) (EventType, bool) {
	switch t := EventType(strings.ToLower(strings.TrimSpace(s))); t {
	case View, Purchase:
		return t, true
	}
	return "", false
}

type Event struct {
	Type        EventType `json:"type"`
	ProductID   int64     `json:"productId,omitempty"`
	ProductName string    `json:"productName,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Validate rejects unknown types and views without a product.
func (e Event) Validate() error {
	switch e.Type {
	case Purchase:
		return nil
	case View:
		if e.ProductID <= 0 {
			return fmt.Errorf("view without product id: %w", ErrInvalidEvent)
		}
		return nil
	}
	return fmt.Errorf("type %q: %w", e.Type, ErrInvalidEvent)
}

// Sink is a destination for events. Implementations must be safe to call from the
// dispatcher's worker goroutine.
type Sink interface {
	Record(ctx context.Context, e Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, e Event) error

func (f SinkFunc) Record(ctx context.Context, e Event) error { return f(ctx, e) }
