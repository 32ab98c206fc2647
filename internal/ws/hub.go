package ws

import (
	"encoding/json"
	"sync"

	"nearby/internal/models"
)

// Client represents a single WebSocket connection with user context.
type Client struct {
	UserID string
	Send   chan []byte
	Hub    *Hub
	mu     sync.Mutex
	closed bool
}

func NewClient(userID string) *Client {
	return &Client{UserID: userID, Send: make(chan []byte, 256)}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.Hub != nil {
		c.Hub.unregister(c)
	}
	close(c.Send)
}

// MessageEvent tells a client that a conversation has new content. It carries
// no profile data; the client reopens the conversation to get the current view.
type MessageEvent struct {
	Type        string `json:"type"`
	ChatID      string `json:"chat_id"`
	MessageID   string `json:"message_id"`
	MessageType string `json:"message_type"`
}

// Hub maintains active clients by user. One user can have several connections.
type Hub struct {
	mu     sync.RWMutex
	byUser map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{byUser: make(map[string]map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.Hub = h
	if h.byUser[c.UserID] == nil {
		h.byUser[c.UserID] = make(map[*Client]struct{})
	}
	h.byUser[c.UserID][c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.byUser[c.UserID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.byUser, c.UserID)
		}
	}
}

// BroadcastToUser drops the payload for clients whose buffer is full.
func (h *Hub) BroadcastToUser(userID string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.byUser[userID] {
		select {
		case c.Send <- data:
		default:
		}
	}
}

func newMessageEvent(m models.Message) MessageEvent {
	return MessageEvent{
		Type:        "message",
		ChatID:      m.SenderID,
		MessageID:   m.ID,
		MessageType: m.Type,
	}
}

// NotifyMessage implements service.Notifier for a single instance.
func (h *Hub) NotifyMessage(recipientID string, m models.Message) {
	h.BroadcastToUser(recipientID, newMessageEvent(m))
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, m := range h.byUser {
		n += len(m)
	}
	return n
}
