// Package dispatcher routes scan events to registered hooks. It is the
// hub all orchestrator output flows through, decoupling event generation
// from the logging, metrics and tracing consumers.
package dispatcher

import (
	"context"
	"sync"

	"github.com/mcpsentry/mcpsentry/pkg/output/events"
)

// Hook is the interface for event consumers (structured logging,
// Prometheus metrics, OTel spans).
type Hook interface {
	// OnEvent is called for each matching event.
	OnEvent(ctx context.Context, event events.Event) error

	// EventTypes returns the event types this hook handles.
	// Return nil or an empty slice to receive all events.
	EventTypes() []events.EventType
}

// Dispatcher routes events to hooks. It is safe for concurrent use.
// A nil *Dispatcher drops all events, so callers can emit unconditionally.
type Dispatcher struct {
	mu    sync.RWMutex
	hooks []Hook
}

// New creates an empty dispatcher.
func New() *Dispatcher {
	return &Dispatcher{}
}

// RegisterHook adds a hook. Hooks receive events matching their
// EventTypes filter, in registration order.
func (d *Dispatcher) RegisterHook(h Hook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks = append(d.hooks, h)
}

// Dispatch sends an event to every matching hook. Hook errors are
// swallowed so one misbehaving consumer cannot starve the others; hooks
// that need error visibility log their own.
func (d *Dispatcher) Dispatch(ctx context.Context, event events.Event) {
	if d == nil {
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, h := range d.hooks {
		if hookSupportsEvent(h, event.EventType()) {
			_ = h.OnEvent(ctx, event)
		}
	}
}

func hookSupportsEvent(h Hook, t events.EventType) bool {
	types := h.EventTypes()
	if len(types) == 0 {
		return true
	}
	for _, et := range types {
		if et == t {
			return true
		}
	}
	return false
}
