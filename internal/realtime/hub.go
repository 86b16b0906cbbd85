// internal/realtime/hub.go
package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is the wire envelope clients receive over the websocket.
type Event struct {
	Event     string    `json:"event"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

type Client struct {
	ID     string
	UserID uuid.UUID
	Conn   *WebSocketConn
	Send   chan []byte

	groups map[string]struct{}
}

// Hub tracks connected clients, their owning users and group
// memberships, and fans events out to them. All sends are non-blocking:
// a client whose buffer is full misses the push and recovers the event
// from the notification store on its next fetch.
type Hub struct {
	clients    map[string]*Client
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) RegisterClient(client *Client) {
	if client.groups == nil {
		client.groups = make(map[string]struct{})
	}
	h.register <- client
}

func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

// JoinGroup subscribes a connection to a named group.
func (h *Hub) JoinGroup(clientID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[clientID]; ok {
		c.groups[group] = struct{}{}
	}
}

func (h *Hub) LeaveGroup(clientID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[clientID]; ok {
		delete(c.groups, group)
	}
}

// SendToUser delivers an event to every connection of one user.
func (h *Hub) SendToUser(userID uuid.UUID, event string, payload any) error {
	data, err := envelope(event, payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		if client.UserID == userID {
			select {
			case client.Send <- data:
			default:
				// full buffer, skip (never block the caller)
			}
		}
	}
	return nil
}

func (h *Hub) SendToGroup(group string, event string, payload any) error {
	data, err := envelope(event, payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		if _, ok := client.groups[group]; ok {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
	return nil
}

func (h *Hub) SendToAll(event string, payload any) error {
	data, err := envelope(event, payload)
	if err != nil {
		return err
	}
	h.broadcast <- data
	return nil
}

func envelope(event string, payload any) ([]byte, error) {
	return json.Marshal(Event{Event: event, Payload: payload, Timestamp: time.Now().UTC()})
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			log.Printf("Client registered: %s (UserID: %s)", client.ID, client.UserID)

		case client := <-h.unregister:
			h.mu.Lock()
			if old, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(old.Send)
				log.Printf("Client unregistered: %s", client.ID)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			// needs the write lock (slow clients get dropped)
			h.mu.Lock()
			for id, client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, id)
				}
			}
			h.mu.Unlock()
		}
	}
}
