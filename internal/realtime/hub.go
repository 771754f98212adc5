package realtime

import (
	"encoding/json"
	"sync"
)

// Hub fans out events to every connected client of a user. A user may have
// several clients open at once (phone and browser).
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
}

type Client struct {
	UserID int64
	Send   chan []byte
}

func NewHub() *Hub {
	return &Hub{clients: map[int64]map[*Client]struct{}{}}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[client.UserID] == nil {
		h.clients[client.UserID] = map[*Client]struct{}{}
	}
	h.clients[client.UserID][client] = struct{}{}
}

// Unregister is safe to call from both pumps; only the first call closes
// the send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.clients, client.UserID)
	}
	close(client.Send)
}

// Broadcast sends the payload to every client the user has connected. Slow
// clients are skipped rather than blocked on.
func (h *Hub) Broadcast(userID int64, payload any) {
	message, err := json.Marshal(payload)
	if err != nil {
		return
	}

	// Sends are non-blocking, so the read lock is held only briefly. Holding
	// it across the loop keeps Unregister from mutating the client set or
	// closing a send channel mid-broadcast.
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.Send <- message:
		default:
		}
	}
}

// ConnectedClients reports how many clients the user currently has open.
func (h *Hub) ConnectedClients(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
