// server/internal/socket/hub.go
package socket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Event is a broadcast inventory notification, e.g. a car being sold or the
// owner book being transferred.
type Event struct {
	Type        string      `json:"type"`
	PlateNumber string      `json:"plateNumber,omitempty"`
	Payload     interface{} `json:"payload,omitempty"`
}

const (
	EventCarSold              = "car.sold"
	EventOwnershipTransferred = "car.ownership_transferred"
)

// Hub manages all connected WebSocket clients.
type Hub struct {
	// clients maps the authenticated user's email to their connection.
	clients map[string]*websocket.Conn
	mu      sync.RWMutex
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
	}
}

// Register adds a client connection to the Hub.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[userID] = conn
	log.Printf("WebSocket client registered: %s", userID)
}

// Unregister removes a client from the Hub.
func (h *Hub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; ok {
		delete(h.clients, userID)
		log.Printf("WebSocket client unregistered: %s", userID)
	}
}

// Broadcast sends an event to every connected client. Delivery is best
// effort; a dead connection only logs.
func (h *Hub) Broadcast(event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal websocket event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for userID, conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("Failed to send event to %s: %v", userID, err)
		}
	}
}
