package events

import (
	"context"
	"log"
	"sync"
)

// Handler receives published events. A handler error is logged, never
// propagated to the publisher.
type Handler func(ctx context.Context, event Event) error

// Bus is a synchronous in-process publisher with fan-out to all subscribers.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Subscribe registers a handler and returns a function that removes it.
func (b *Bus) Subscribe(handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}
}

// Publish delivers the event to every subscriber in turn.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, event); err != nil {
			log.Printf("WARN: event handler failed for %s %s: %v", event.Kind, event.PermissionName, err)
		}
	}
	return nil
}

var _ Publisher = (*Bus)(nil)
