package stream

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub tracks connected clients. Writes to a connection only happen with the
// hub lock held.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	logger  *log.Logger
}

// NewHub returns an empty hub.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{clients: make(map[*websocket.Conn]bool), logger: logger}
}

// Add registers ws and sends it the first frame.
func (h *Hub) Add(ws *websocket.Conn, first []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[ws] = true
	if first != nil {
		h.writeLocked(ws, first)
	}
}

// Remove forgets ws and closes it.
func (h *Hub) Remove(ws *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[ws] {
		delete(h.clients, ws)
		ws.Close()
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends frame to every client, dropping those that fail.
func (h *Hub) Broadcast(frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ws := range h.clients {
		h.writeLocked(ws, frame)
	}
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ws := range h.clients {
		ws.Close()
		delete(h.clients, ws)
	}
}

func (h *Hub) writeLocked(ws *websocket.Conn, frame []byte) {
	if err := ws.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		h.logger.Println("Error writing message to client:", err)
		ws.Close()
		delete(h.clients, ws)
	}
}
