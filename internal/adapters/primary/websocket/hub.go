package websocket

import (
	"log/slog"
	"sync"

	"github.com/msclatvia/wellbeing-backend/internal/core/domain"
	"github.com/msclatvia/wellbeing-backend/internal/core/ports"
)

// Hub maintains the set of connected dashboard clients and fans survey
// events out to all of them. Events are refresh hints, not data; a client
// reacts by re-querying the dashboard endpoints with its own filters.
type Hub struct {
	// clients holds every active connection
	clients map[*Client]bool

	// Broadcast channel for events
	broadcast chan domain.Event

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// mu protects the clients map
	mu sync.RWMutex

	// logger for the hub
	logger *slog.Logger
}

// Ensure Hub implements the EventBroadcaster interface.
var _ ports.EventBroadcaster = (*Hub)(nil)

// NewHub creates a new WebSocket hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan domain.Event, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// Broadcast sends an event to the hub's internal broadcast channel.
// This method implements the ports.EventBroadcaster interface.
func (h *Hub) Broadcast(event domain.Event) error {
	select {
	case h.broadcast <- event:
		return nil
	default:
		h.logger.Warn("broadcast channel full, dropping event",
			"event_type", event.Type,
			"department", event.Department,
		)
		return nil
	}
}

// Run starts the hub's event loop. This MUST be run as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

// registerClient adds a client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	h.logger.Info("client registered",
		"client_id", client.ID,
		"total_connections", len(h.clients),
	)
}

// unregisterClient removes a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.CloseSend()
	}

	h.logger.Info("client unregistered",
		"client_id", client.ID,
		"total_connections", len(h.clients),
	)
}

// broadcastEvent sends an event to every connected client
func (h *Hub) broadcastEvent(event domain.Event) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	h.logger.Debug("broadcasting event",
		"event_type", event.Type,
		"client_count", len(clients),
	)

	for _, client := range clients {
		select {
		case client.Send <- event:
			// Successfully queued
		default:
			// broadcastEvent runs on the hub goroutine, the only receiver
			// of Unregister, so going through the channel would block the
			// hub on itself. Drop the client inline instead.
			h.logger.Warn("client send buffer full, dropping connection",
				"client_id", client.ID,
			)
			h.unregisterClient(client)
		}
	}
}

// GetClientCount returns the total number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
