package feed

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Event is one operational notification broadcast to dashboard clients:
// tip created, fanout batch started or finished, delivery failed, backup
// state changed.
type Event struct {
	Kind string         `json:"kind"`
	At   time.Time      `json:"at"`
	Data map[string]any `json:"data,omitempty"`
}

// Event kinds published by the service.
const (
	KindTipCreated      = "tip_created"
	KindFanoutStarted   = "fanout_started"
	KindFanoutFinished  = "fanout_finished"
	KindDeliveryFailed  = "delivery_failed"
	KindBackupCompleted = "backup_completed"
	KindBackupFailed    = "backup_failed"
	KindTipsReseeded    = "tips_reseeded"
)

// Hub fans events out to every connected feed client. Slow clients get
// dropped messages, never backpressure.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) subscribe(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unsubscribe(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Publish broadcasts an event to all connected clients.
func (h *Hub) Publish(kind string, data map[string]any) {
	msg, err := json.Marshal(Event{Kind: kind, At: time.Now().UTC(), Data: data})
	if err != nil {
		h.logger.Error("marshal feed event", "kind", kind, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// Client buffer full, drop the event rather than block
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
