// Package broadcast fans out fire-and-forget state-change notifications
// (parameters_update, status_update, error) to any number of subscribers.
// No pub/sub library appears anywhere in the example pack, so this is
// built directly on sync/channels; see DESIGN.md for why that is the
// right call here rather than a gap.
package broadcast

import "sync"

// MessageType tags a broadcast payload's shape.
type MessageType string

const (
	ParametersUpdate MessageType = "parameters_update"
	StatusUpdate     MessageType = "status_update"
	ErrorMessage     MessageType = "error"
)

// Message is the broadcast boundary's wire shape: Data matches the GET
// response shape for its Type.
type Message struct {
	Type      MessageType
	Timestamp string // UTC ISO-8601, stamped by the caller
	Data      any
}

const subscriberBuffer = 16

// Hub is a small fan-out registry of subscriber channels. Publish never
// blocks the caller: a subscriber that can't keep up has messages dropped
// for it rather than stalling the publisher, since publishers include the
// animator ticking at 60 Hz.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Message]struct{}
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Message]struct{})}
}

// Subscribe registers a new buffered channel and returns it along with an
// unsubscribe function the caller must invoke when done listening.
func (h *Hub) Subscribe() (<-chan Message, func()) {
	ch := make(chan Message, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, unsubscribe
}

// Publish fans msg out to every current subscriber without blocking.
func (h *Hub) Publish(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- msg:
		default:
			// Slow subscriber: drop rather than block the publisher.
		}
	}
}

// SubscriberCount reports the current number of live subscribers, mainly
// for tests and diagnostics.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
