package events

import "sync"

// Handler receives published events. Handlers must not block; anything slow
// belongs on the handler's own goroutine.
type Handler func(Event)

// Bus is a minimal synchronous publish/subscribe dispatcher. Publish order is
// the subscription order; there is no replay and no persistence.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewBus() *Bus { return &Bus{} }

// Subscribe registers h for all events.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish delivers e to every subscriber. A nil bus is a no-op so components
// can treat the bus as optional.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	hs := make([]Handler, len(b.handlers))
	copy(hs, b.handlers)
	b.mu.RUnlock()
	for _, h := range hs {
		h(e)
	}
}
