package notify

import (
	"log/slog"
	"sync"
)

const subscriberBuffer = 16

type subscriber struct {
	ch chan Notification
}

// Hub routes notifications to subscribers of a session.
type Hub struct {
	subs map[string]map[*subscriber]struct{}
	mu   sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[*subscriber]struct{}),
	}
}

// Subscribe registers a listener for sessionID. The returned cancel function
// unregisters it and closes the channel; it is safe to call more than once
// and after Close.
func (h *Hub) Subscribe(sessionID string) (<-chan Notification, func()) {
	sub := &subscriber{ch: make(chan Notification, subscriberBuffer)}

	h.mu.Lock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[*subscriber]struct{})
	}
	h.subs[sessionID][sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[sessionID][sub]; !ok {
			return
		}
		delete(h.subs[sessionID], sub)
		if len(h.subs[sessionID]) == 0 {
			delete(h.subs, sessionID)
		}
		close(sub.ch)
	}
	return sub.ch, cancel
}

// Publish delivers n to every subscriber of sessionID without blocking. A
// subscriber whose buffer is full misses the notification.
func (h *Hub) Publish(sessionID string, n Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[sessionID] {
		select {
		case sub.ch <- n:
		default:
			slog.Warn("dropping notification for slow subscriber",
				"session_id", sessionID,
				"kind", n.Kind,
			)
		}
	}
}

// Subscribers returns the number of listeners for sessionID.
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}

// Close drops every subscriber of sessionID, ending their streams.
func (h *Hub) Close(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[sessionID] {
		close(sub.ch)
	}
	delete(h.subs, sessionID)
}
