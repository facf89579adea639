package hub

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"tinyroom/models"
)

// Client is one live connection belonging to a user. A user may hold several
// at once (multiple tabs or devices).
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// NewClient wraps a websocket connection for a user
func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}
}

// WritePump drains the send channel onto the wire. Runs until the channel is
// closed or a write fails.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// Hub tracks the live connections of every user and fans events out to them
type Hub struct {
	mutex   sync.RWMutex
	clients map[string]map[*Client]struct{} // userID -> connection set
}

// New creates an empty hub
func New() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

// Register adds a connection to the user's set
func (h *Hub) Register(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	set, ok := h.clients[client.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[client.UserID] = set
	}
	set[client] = struct{}{}
}

// Unregister removes a connection; the user entry disappears with its last
// connection so presence stays queryable. No-op for unknown connections.
func (h *Hub) Unregister(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	set, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.Send)
	if len(set) == 0 {
		delete(h.clients, client.UserID)
	}
}

// IsOnline reports whether a user has at least one live connection
func (h *Hub) IsOnline(userID string) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// SendToUser delivers an event to every live connection of one user,
// best effort. A stuck connection drops the frame rather than blocking;
// it gets pruned when its read pump exits.
func (h *Hub) SendToUser(userID string, event models.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling %s event: %v", event.Type, err)
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()
	h.deliver(userID, data)
}

// Broadcast delivers an event to every connected user except those excluded
func (h *Hub) Broadcast(event models.Event, excluding ...string) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling %s event: %v", event.Type, err)
		return
	}

	excluded := make(map[string]struct{}, len(excluding))
	for _, id := range excluding {
		excluded[id] = struct{}{}
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()
	for userID := range h.clients {
		if _, skip := excluded[userID]; skip {
			continue
		}
		h.deliver(userID, data)
	}
}

// deliver pushes a frame to each of a user's connections. Callers hold at
// least the read lock.
func (h *Hub) deliver(userID string, data []byte) {
	for client := range h.clients[userID] {
		select {
		case client.Send <- data:
		default:
			log.Printf("Dropping frame for user %s: send buffer full", userID)
		}
	}
}
