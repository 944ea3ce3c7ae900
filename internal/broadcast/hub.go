// Package broadcast fans order lifecycle events out to every connected
// display session (KDS, admin, POS monitors). Delivery is best-effort: a
// slow or dead session is dropped, never waited on, and a publish succeeds
// regardless of how many sessions received it. Missed events are not
// replayed; late joiners reconcile with a full order listing.
package broadcast

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/geromendez199/AlfajorApp/pkg/models"
)

// Event is the wire shape delivered to subscribers.
type Event struct {
	Type  models.EventType `json:"type"`
	Order *models.Order    `json:"order"`
}

// sessionBuffer bounds each session's send queue. A session that falls this
// far behind is disconnected rather than backpressuring publishers.
const sessionBuffer = 64

// Session is one subscriber's handle. Events arrive on Events() in publish
// order; the channel is closed when the session is unsubscribed or dropped.
type Session struct {
	send chan Event
}

func (s *Session) Events() <-chan Event {
	return s.send
}

// Hub keeps the registry of live sessions. All methods are safe for
// concurrent use from many sessions and many publishers.
type Hub struct {
	mu       sync.Mutex
	sessions map[*Session]bool
	logger   *logrus.Logger
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		sessions: make(map[*Session]bool),
		logger:   logger,
	}
}

func (h *Hub) Subscribe() *Session {
	s := &Session{send: make(chan Event, sessionBuffer)}
	h.mu.Lock()
	h.sessions[s] = true
	count := len(h.sessions)
	h.mu.Unlock()
	h.logger.WithField("session_count", count).Info("Display session connected")
	return s
}

func (h *Hub) Unsubscribe(s *Session) {
	h.mu.Lock()
	if h.sessions[s] {
		delete(h.sessions, s)
		close(s.send)
	}
	count := len(h.sessions)
	h.mu.Unlock()
	h.logger.WithField("session_count", count).Info("Display session disconnected")
}

// Publish delivers the event to every live session and returns once
// dispatch has been attempted for all of them. A session whose queue is
// full is dropped on the spot.
func (h *Hub) Publish(eventType models.EventType, order *models.Order) {
	event := Event{Type: eventType, Order: order.Clone()}

	h.mu.Lock()
	var dropped int
	for s := range h.sessions {
		select {
		case s.send <- event:
		default:
			delete(h.sessions, s)
			close(s.send)
			dropped++
		}
	}
	h.mu.Unlock()

	if dropped > 0 {
		h.logger.WithFields(logrus.Fields{
			"event_type": eventType,
			"dropped":    dropped,
		}).Warn("Dropped slow display sessions")
	}
}

func (h *Hub) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}
