package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Message is a real-time sync notification pushed to a family's
// connected clients.
type Message struct {
	Type   string         `json:"type"`
	Entity string         `json:"entity"`
	Action string         `json:"action"`
	ID     int64          `json:"id,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// NewMessage creates a Message with the Type field derived from entity and action.
func NewMessage(entity, action string, id int64, extra map[string]any) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
		Extra:  extra,
	}
}

// Hub maintains the set of active WebSocket clients grouped by family.
// A broadcast reaches only the clients of the family it names.
type Hub struct {
	mu       sync.RWMutex
	families map[int64]map[*Client]struct{}
	logger   *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		families: make(map[int64]map[*Client]struct{}),
		logger:   logger.With("component", "websocket"),
	}
}

// Register adds a client under its family.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	clients, ok := h.families[c.familyID]
	if !ok {
		clients = make(map[*Client]struct{})
		h.families[c.familyID] = clients
	}
	clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if clients, ok := h.families[c.familyID]; ok {
		if _, ok := clients[c]; ok {
			delete(clients, c)
			close(c.send)
		}
		if len(clients) == 0 {
			delete(h.families, c.familyID)
		}
	}
	h.mu.Unlock()
}

// Broadcast sends a message to every client of the given family.
func (h *Hub) Broadcast(familyID int64, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.families[familyID] {
		select {
		case c.send <- data:
		default:
			// Client buffer full, drop rather than block
		}
	}
}

// ClientCount returns the number of connected clients for a family.
func (h *Hub) ClientCount(familyID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.families[familyID])
}
