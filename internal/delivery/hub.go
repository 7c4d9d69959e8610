// Package delivery moves lifecycle events from the orchestrator to a UI
// surface: directly to a subscribed page stream when one is live, otherwise
// into the persisted fallback slots for the popup.
package delivery

import (
	"sync"

	"github.com/shirase/yoyaku/internal/event"
)

// subscriberBuffer bounds each subscriber channel. A slow reader drops the
// oldest pending events rather than blocking the orchestrator.
const subscriberBuffer = 8

// Hub routes events to live page subscriptions keyed by destination handle.
// A destination with no subscriber — a page that never loaded the injected
// UI, or navigated away — fails direct delivery.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan event.Event]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan event.Event]struct{})}
}

// Subscribe registers a stream for destination. The returned cancel func
// unregisters and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(destination string) (<-chan event.Event, func()) {
	ch := make(chan event.Event, subscriberBuffer)

	h.mu.Lock()
	set, ok := h.subs[destination]
	if !ok {
		set = make(map[chan event.Event]struct{})
		h.subs[destination] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if set, ok := h.subs[destination]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(h.subs, destination)
				}
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Send delivers ev to every subscriber of destination without blocking.
// It reports whether at least one subscriber received the event; false means
// the destination is unreachable and the caller should consider the fallback
// path.
func (h *Hub) Send(destination string, ev event.Event) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := false
	for ch := range h.subs[destination] {
		select {
		case ch <- ev:
			delivered = true
		default:
			// Full buffer: make room by dropping the oldest event.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
				delivered = true
			default:
			}
		}
	}
	return delivered
}

// Subscribers returns the number of live streams for destination.
func (h *Hub) Subscribers(destination string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[destination])
}
