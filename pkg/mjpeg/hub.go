package mjpeg

import (
	"log/slog"
	"sync"
)

// Hub is an ordered, multi-subscriber broadcast channel for session events.
// There is no replay: subscribers attached after an event was published never
// see it. Delivery is non-blocking; a subscriber that cannot keep up has
// events dropped rather than stalling the session.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	closed bool
}

func newHub() *Hub {
	return &Hub{
		subs: make(map[chan Event]struct{}),
	}
}

// Subscribe registers a new subscriber with the given channel capacity.
// The returned channel is closed when the session ends.
func (h *Hub) Subscribe(capacity int) <-chan Event {
	if capacity < 1 {
		capacity = 1
	}
	ch := make(chan Event, capacity)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	h.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(ch <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		if sub == ch {
			delete(h.subs, sub)
			close(sub)
			return
		}
	}
}

// publish delivers an event to every current subscriber in registration-
// independent but per-subscriber ordered fashion.
func (h *Hub) publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for sub := range h.subs {
		select {
		case sub <- ev:
		default:
			slog.Debug("slow subscriber, event dropped")
		}
	}
}

// close closes every subscriber channel. Idempotent.
func (h *Hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		delete(h.subs, sub)
		close(sub)
	}
}
