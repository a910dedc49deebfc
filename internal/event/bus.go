package event

import (
	"log"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// Handler handles one published event.
type Handler func(Event)

// Bus is a synchronous pub-sub bus. Publish calls every matching handler on
// the publishing goroutine before returning; a panicking handler is recovered
// and logged so it cannot block delivery to the rest.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]subscription
	nextID atomic.Uint64
}

type subscription struct {
	id      uint64
	handler Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]subscription)}
}

// Subscribe registers a handler for one event type and returns an ID usable
// with Unsubscribe.
func (b *Bus) Subscribe(eventType string, handler Handler) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID.Add(1)
	b.subs[eventType] = append(b.subs[eventType], subscription{id: id, handler: handler})
	return id
}

// SubscribeAll registers a handler for every event type.
func (b *Bus) SubscribeAll(handler Handler) uint64 {
	return b.Subscribe("*", handler)
}

// Unsubscribe removes a subscription by ID and reports whether it existed.
func (b *Bus) Unsubscribe(id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subs {
		for i, s := range subs {
			if s.id == id {
				b.subs[eventType] = append(subs[:i], subs[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Publish delivers ev to its type's handlers, then to wildcard handlers,
// in registration order within each group.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	specific := append([]subscription(nil), b.subs[ev.EventType()]...)
	wildcard := append([]subscription(nil), b.subs["*"]...)
	b.mu.RUnlock()

	for _, s := range specific {
		safeCall(s.handler, ev)
	}
	for _, s := range wildcard {
		safeCall(s.handler, ev)
	}
}

func safeCall(handler Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: event handler panicked for %s: %v\n%s",
				ev.EventType(), r, debug.Stack())
		}
	}()
	handler(ev)
}
