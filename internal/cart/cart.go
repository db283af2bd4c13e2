package cart

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Cart serialises all mutations of one session's state.
type Cart struct {
	mu         sync.Mutex
	state      State
	lastActive time.Time
}

func New() *Cart {
	return &Cart{lastActive: time.Now()}
}

// Dispatch applies actions in order against the current snapshot and commits the result only
// if every action succeeds.
func (c *Cart) Dispatch(actions ...Action) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.state
	for _, a := range actions {
		var err error
		if next, err = Reduce(next, a); err != nil {
			return c.state, err
		}
	}
	c.state = next
	c.lastActive = time.Now()
	return next, nil
}

func (c *Cart) Add(item Snapshot) error {
	_, err := c.Dispatch(Add{Item: item})
	return err
}

func (c *Cart) Remove(k Key) {
	_, _ = c.Dispatch(Remove{Key: k})
}

func (c *Cart) UpdateQuantity(k Key, quantity int) {
	_, _ = c.Dispatch(SetQuantity{Key: k, Quantity: quantity})
}

func (c *Cart) Clear() {
	_, _ = c.Dispatch(Clear{})
}

func (c *Cart) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Cart) Items() []LineItem         { return c.State().Items() }
func (c *Cart) TotalItems() int           { return c.State().TotalItems() }
func (c *Cart) Subtotal() decimal.Decimal { return c.State().Subtotal() }

func (c *Cart) touch(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if now.After(c.lastActive) {
		c.lastActive = now
	}
}

func (c *Cart) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}
