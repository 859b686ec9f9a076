package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event is one item on the operations feed.
type Event struct {
	Type    string    `json:"type"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

// Hub is an in-process fan-out of operational events. Slow subscribers drop
// events instead of blocking publishers.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   map[chan Event]struct{}{},
		logger: logger,
	}
}

func (h *Hub) Publish(event string, payload any) {
	if h == nil {
		return
	}
	e := Event{Type: event, Payload: payload, At: time.Now().UTC()}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- e:
		default:
			if h.logger != nil {
				h.logger.Debug("event dropped for slow subscriber", zap.String("type", event))
			}
		}
	}
}

// Subscribe registers a buffered channel. The returned cancel func must be
// called when the subscriber goes away.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 32)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	cancel := func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
	return ch, cancel
}
