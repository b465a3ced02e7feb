// Package event fans host input (resize, pointer, visibility) out to subscribers.
// Every Subscribe returns a Subscription whose Unsubscribe was captured at creation,
// so teardown is symmetric with registration.
package event

import (
	"sync"
)

// Handler processes one event, called synchronously from Publish
type Handler func(ev Event)

type listener struct {
	id      uint64
	handler Handler
}

// Bus dispatches events to handlers in registration order
// Safe for concurrent use; handlers run on the publishing goroutine
type Bus struct {
	mu        sync.RWMutex
	listeners [eventTypeCount][]listener
	nextID    uint64
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{nextID: 1}
}

// Subscribe registers h for events of type t
func (b *Bus) Subscribe(t EventType, h Handler) *Subscription {
	if t < 0 || t >= eventTypeCount || h == nil {
		return &Subscription{}
	}
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[t] = append(b.listeners[t], listener{id: id, handler: h})
	b.mu.Unlock()

	return &Subscription{bus: b, typ: t, id: id}
}

// Publish delivers ev to every handler registered for its type
// Handlers registered or removed during delivery take effect on the next Publish
func (b *Bus) Publish(ev Event) {
	if ev.Type < 0 || ev.Type >= eventTypeCount {
		return
	}
	b.mu.RLock()
	ls := b.listeners[ev.Type]
	snapshot := make([]listener, len(ls))
	copy(snapshot, ls)
	b.mu.RUnlock()

	for _, l := range snapshot {
		l.handler(ev)
	}
}

// Listeners returns the number of handlers registered for t
func (b *Bus) Listeners(t EventType) int {
	if t < 0 || t >= eventTypeCount {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[t])
}

// Total returns the number of handlers across all types
func (b *Bus) Total() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for i := range b.listeners {
		n += len(b.listeners[i])
	}
	return n
}

func (b *Bus) remove(t EventType, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ls := b.listeners[t]
	for i, l := range ls {
		if l.id == id {
			b.listeners[t] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

// Subscription detaches one handler; the zero value is an inert subscription
type Subscription struct {
	bus  *Bus
	typ  EventType
	id   uint64
	once sync.Once
}

// Unsubscribe removes the handler. Safe to call multiple times and on nil
func (s *Subscription) Unsubscribe() {
	if s == nil || s.bus == nil {
		return
	}
	s.once.Do(func() {
		s.bus.remove(s.typ, s.id)
	})
}
