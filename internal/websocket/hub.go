package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/webrana/adminmail-backend/internal/models"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeNewEmail MessageType = "new_email"
	MessageTypeUnread   MessageType = "unread"
	MessageTypeError    MessageType = "error"
)

// WSMessage represents a WebSocket message pushed to a user's clients
type WSMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// NewEmailPayload notifies a connected mail view that a message arrived
type NewEmailPayload struct {
	ID          string `json:"id"`
	From        string `json:"from"`
	FromName    string `json:"fromName,omitempty"`
	Subject     string `json:"subject,omitempty"`
	Preview     string `json:"preview,omitempty"`
	Folder      string `json:"folder"`
	ReceivedAt  string `json:"receivedAt,omitempty"`
	UnreadInbox int64  `json:"unreadInbox"`
}

// Hub maintains active clients keyed by user id and pushes mailbox events
// to all of a user's connections.
type Hub struct {
	// userID -> set of clients
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *userMessage

	mu sync.RWMutex

	logger *slog.Logger
}

type userMessage struct {
	userID  string
	message []byte
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *userMessage, 256),
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client registered", slog.String("user_id", client.userID))
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.clients[client.userID]; ok && conns[client] {
				delete(conns, client)
				close(client.send)
				if len(conns) == 0 {
					delete(h.clients, client.userID)
				}
			}
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client unregistered", slog.String("user_id", client.userID))
			}

		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients[msg.userID] {
				select {
				case client.send <- msg.message:
				default:
					// Client buffer full, skip
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// NotifyNewEmail pushes a new-email event to all of the user's connections.
// Implements ingest.Notifier.
func (h *Hub) NotifyNewEmail(userID string, email *models.Email, unreadInbox int64) {
	payload := &NewEmailPayload{
		ID:          email.ID,
		From:        email.From,
		FromName:    email.FromName,
		Subject:     email.Subject,
		Preview:     email.Preview,
		Folder:      email.Folder,
		UnreadInbox: unreadInbox,
	}
	if email.ReceivedAt != nil {
		payload.ReceivedAt = email.ReceivedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	h.send(userID, WSMessage{Type: MessageTypeNewEmail, Payload: payload})
}

// NotifyUnread pushes per-folder unread counts to the user's connections
func (h *Hub) NotifyUnread(userID string, counts map[string]int64) {
	h.send(userID, WSMessage{Type: MessageTypeUnread, Payload: counts})
}

func (h *Hub) send(userID string, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to marshal broadcast message", slog.Any("error", err))
		}
		return
	}

	h.broadcast <- &userMessage{userID: userID, message: data}
}
