// Package event provides a simple synchronous/async event dispatcher.
//
// A Bus is constructed at boot and handed to whoever fires or listens; there
// is no package-level registry.
package event

import (
	"sync"
)

// Domain events fired by the application services.
const (
	UserRegistered = "user.registered"
	OrderPlaced    = "order.placed"
)

// Handler is a function that receives an event payload.
type Handler func(payload interface{})

// Bus dispatches named events to registered handlers.
// All methods are safe on a nil *Bus, which makes the bus optional in tests.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewBus returns an empty dispatcher.
func NewBus() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Listen registers a handler for the given event name.
func (b *Bus) Listen(event string, handler Handler) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], handler)
}

// Fire dispatches an event synchronously to all registered listeners.
func (b *Bus) Fire(event string, payload interface{}) {
	for _, h := range b.snapshot(event) {
		h(payload)
	}
}

// FireAsync dispatches the event to all listeners concurrently.
// It returns immediately without waiting for handlers to complete.
func (b *Bus) FireAsync(event string, payload interface{}) {
	for _, h := range b.snapshot(event) {
		go h(payload)
	}
}

// Flush removes all listeners (useful in tests).
func (b *Bus) Flush() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = map[string][]Handler{}
}

func (b *Bus) snapshot(event string) []Handler {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	hs := make([]Handler, len(b.handlers[event]))
	copy(hs, b.handlers[event])
	return hs
}
