package cart

import (
	"sync"
	"time"
)

// Registry maps session ids to carts. Carts live only in process memory.
type Registry struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewRegistry() *Registry {
	return &Registry{carts: make(map[string]*Cart)}
}

// Get returns the cart for sid, creating it on first use. It counts as activity, so a
// Sweep right after Get keeps the cart.
func (r *Registry) Get(sid string) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[sid]
	if !ok {
		c = New()
		r.carts[sid] = c
		return c
	}
	c.touch(time.Now())
	return c
}

// Peek returns the cart for sid without creating one.
func (r *Registry) Peek(sid string) (*Cart, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[sid]
	return c, ok
}

// Sweep drops carts idle for longer than idle as of now and reports how many were removed.
func (r *Registry) Sweep(idle time.Duration, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for sid, c := range r.carts {
		if now.Sub(c.LastActive()) > idle {
			delete(r.carts, sid)
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}
