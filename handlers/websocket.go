package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"tinyroom/hub"
	"tinyroom/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// HandleWebSocket upgrades the connection and registers it with the hub
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := hub.NewClient(user.ID, conn)
	h.Hub.Register(client)
	log.Printf("Client connected: user %s", user.ID)

	go client.WritePump()
	go h.readPump(client)
}

// readPump discards inbound frames and unregisters the client when the
// connection drops
func (h *Handler) readPump(client *hub.Client) {
	defer func() {
		h.Hub.Unregister(client)
		client.Conn.Close()
		log.Printf("Client disconnected: user %s", client.UserID)
	}()

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}
