// Package ws maintains live websocket connections for per-user
// notification delivery.
package ws

import (
	"sync"

	"go.uber.org/zap"
)

// Hub tracks connected clients. A user may hold several connections at
// once; SendToUser delivers to all of them.
type Hub struct {
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *zap.Logger
}

// NewHub creates an empty Hub. Call Run in a goroutine to start it.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]struct{}),
		logger:     logger,
	}
}

// Run processes register and unregister events until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("websocket client connected",
				zap.String("client_id", client.id), zap.String("user_id", client.userID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Debug("websocket client disconnected",
				zap.String("client_id", client.id), zap.String("user_id", client.userID))
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// SendToUser delivers a payload to every live connection the user holds.
// Clients with a full send buffer are skipped.
func (h *Hub) SendToUser(userID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.userID != userID {
			continue
		}
		select {
		case client.send <- payload:
		default:
			h.logger.Warn("websocket send buffer full, dropping payload",
				zap.String("client_id", client.id), zap.String("user_id", userID))
		}
	}
}

// ActiveConnections reports the number of connected clients.
func (h *Hub) ActiveConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
