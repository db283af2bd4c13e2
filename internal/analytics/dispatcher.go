package analytics

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	applog "courtside/internal/log"
)

const sinkTimeout = 5 * time.Second

// Dispatcher queues events on a bounded buffer and fans them out to its sinks from a
// single worker goroutine.
type Dispatcher struct {
	events chan Event
	sinks  []Sink

	mu      sync.RWMutex
	stopped bool

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
	dropped   atomic.Int64
	now       func() time.Time
}

func NewDispatcher(buffer int, sinks ...Sink) *Dispatcher {
	if buffer < 1 {
		buffer = 1
	}
	return &Dispatcher{events: make(chan Event, buffer), sinks: sinks, now: time.Now}
}

// Start launches the worker. Sink calls derive their context from ctx.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		d.wg.Add(1)
		go d.run(ctx)
	})
}

// Track enqueues e and reports whether it was accepted. It never blocks: when the buffer
// is full or the dispatcher is stopped the event is dropped.
func (d *Dispatcher) Track(e Event) bool {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = d.now().UTC()
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		d.drop(e, "stopped")
		return false
	}
	select {
	case d.events <- e:
		return true
	default:
		d.drop(e, "buffer_full")
		return false
	}
}

// Stop closes the queue, waits for queued events to reach the sinks and is safe to call
// more than once.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.stopped = true
		close(d.events)
		d.mu.Unlock()
	})
	d.wg.Wait()
}

// Dropped counts events rejected by Track.
func (d *Dispatcher) Dropped() int64 { return d.dropped.Load() }

func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()
	for e := range d.events {
		for _, s := range d.sinks {
			sctx, cancel := context.WithTimeout(ctx, sinkTimeout)
			if err := s.Record(sctx, e); err != nil {
				applog.Error(nil, "analytics.sink", err, map[string]any{"type": e.Type, "product_id": e.ProductID})
			}
			cancel()
		}
	}
}

func (d *Dispatcher) drop(e Event, reason string) {
	d.dropped.Add(1)
	applog.Security(nil, "analytics.drop", map[string]any{"type": e.Type, "reason": reason})
}
