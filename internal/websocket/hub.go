package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/dukerupert/elms/internal/model"
)

// Entities named in sync notifications.
const (
	EntityCourse   = "course"
	EntitySection  = "section"
	EntityMaterial = "material"
	EntityEvent    = "calendar_event"
	EntityChat     = "chat_message"
	EntityUser     = "user"
	EntityReminder = "reminder"
)

// Message tells dashboards which entity changed so they can refetch it.
type Message struct {
	Type   string         `json:"type"`
	Entity string         `json:"entity"`
	Action string         `json:"action"`
	ID     int64          `json:"id,omitempty"`
	Actor  string         `json:"actor,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// NewMessage creates a Message with the Type field derived from entity and action.
func NewMessage(entity, action string, id int64, extra map[string]any) Message {
	return Message{
		Type:   entity + "_" + action,
		Entity: entity,
		Action: action,
		ID:     id,
		Extra:  extra,
	}
}

// Hub maintains the set of active dashboard connections and fans out
// sync notifications.
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

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("client connected", "role", c.role)
}

// Unregister removes a client from the hub and closes its send channel.
// Unregistering twice is a no-op.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends msg to every connected dashboard.
func (h *Hub) Broadcast(msg Message) {
	h.send(msg, nil)
}

// BroadcastTo sends msg only to dashboards signed in with one of roles.
func (h *Hub) BroadcastTo(msg Message, roles ...model.Role) {
	h.send(msg, roles)
}

func (h *Hub) send(msg Message, roles []model.Role) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if roles != nil && !c.hasRole(roles) {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.logger.Debug("dropped message for slow client", "type", msg.Type, "role", c.role)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
