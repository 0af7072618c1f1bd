package ws

import (
	"log"
	"sync"

	"coldtrack/internal/pkg/metrics"
)

// Subscriber is one live connection. *websocket.Conn satisfies it.
type Subscriber interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Hub owns the set of live subscribers. It is injected into the services
// that broadcast, so tests can swap it for a recording fake. All methods
// are safe to call concurrently.
type Hub struct {
	mu          sync.Mutex
	subscribers map[Subscriber]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[Subscriber]struct{}),
	}
}

// Register adds a subscriber to the active set
func (h *Hub) Register(sub Subscriber) {
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	count := len(h.subscribers)
	h.mu.Unlock()

	metrics.ActiveSubscribers.Set(float64(count))
	log.Printf("🔔 Subscriber connected (%d active)", count)
}

// Unregister removes and closes a subscriber. Safe to call for a
// subscriber that was already removed by a failed broadcast.
func (h *Hub) Unregister(sub Subscriber) {
	h.mu.Lock()
	_, ok := h.subscribers[sub]
	if ok {
		delete(h.subscribers, sub)
	}
	count := len(h.subscribers)
	h.mu.Unlock()

	if ok {
		_ = sub.Close()
		metrics.ActiveSubscribers.Set(float64(count))
		log.Printf("🔕 Subscriber disconnected (%d active)", count)
	}
}

// Broadcast sends a message to every current subscriber, best effort.
// Subscribers whose send fails are dropped from the active set; the
// broadcast itself never returns an error.
func (h *Hub) Broadcast(message interface{}) {
	h.mu.Lock()
	targets := make([]Subscriber, 0, len(h.subscribers))
	for sub := range h.subscribers {
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	var failed []Subscriber
	for _, sub := range targets {
		if err := sub.WriteJSON(message); err != nil {
			failed = append(failed, sub)
		}
	}

	for _, sub := range failed {
		h.Unregister(sub)
	}

	metrics.BroadcastsTotal.Inc()
}

// Count returns the number of active subscribers
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
