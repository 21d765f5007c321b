package events

import "sync"

// Handler consumes an event.
type Handler func(Event)

type subscription struct {
	id uint64
	fn Handler
}

// Bus dispatches events to subscribers synchronously, in subscription order.
// Subscribing is safe from any goroutine; Publish is expected to be called
// from the loop goroutine only.
type Bus struct {
	mu     sync.RWMutex
	subs   map[Type][]subscription
	nextID uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Type][]subscription)}
}

// Subscribe registers fn for events of type t and returns a function that
// removes the registration.
func (b *Bus) Subscribe(t Type, fn Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[t] = append(b.subs[t], subscription{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[t]
		for i, s := range list {
			if s.id == id {
				b.subs[t] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers ev to every handler subscribed to its type.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	list := b.subs[ev.Type]
	handlers := make([]Handler, len(list))
	for i, s := range list {
		handlers[i] = s.fn
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}

// Subscribers returns the number of handlers registered for t.
func (b *Bus) Subscribers(t Type) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[t])
}
