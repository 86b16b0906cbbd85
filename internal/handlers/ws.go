package handlers

import (
	"log"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/vertexhq/vertex-api/internal/realtime"
	"github.com/vertexhq/vertex-api/internal/utils"
)

type WSHandler struct {
	Hub       *realtime.Hub
	JWTSecret string
}

func NewWSHandler(hub *realtime.Hub, jwtSecret string) *WSHandler {
	return &WSHandler{Hub: hub, JWTSecret: jwtSecret}
}

type wsClientMessage struct {
	Action string `json:"action"` // join / leave / pong
	Group  string `json:"group,omitempty"`
}

// Serve registers the connection with the hub and pumps events to it.
// Auth rides in the token query param (cookies don't reach the upgrade
// request from every client).
func (h *WSHandler) Serve(c *websocket.Conn) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		log.Println("WebSocket: token parameter missing")
		c.Close()
		return
	}

	claims, err := utils.ParseJWT(h.JWTSecret, tokenStr)
	if err != nil {
		log.Println("WebSocket: invalid token:", err)
		c.Close()
		return
	}

	userUUID, err := uuid.Parse(claims.UserID)
	if err != nil {
		log.Println("WebSocket: invalid user id in token:", err)
		c.Close()
		return
	}

	log.Printf("WebSocket: user %s connected\n", userUUID)

	client := &realtime.Client{
		ID:     uuid.New().String(),
		UserID: userUUID,
		Conn:   realtime.NewWebSocketConn(c),
		Send:   make(chan []byte, 256),
	}

	h.Hub.RegisterClient(client)
	defer func() {
		h.Hub.UnregisterClient(client)
		log.Printf("WebSocket: user %s disconnected\n", userUUID)
	}()

	// hub -> client
	go func() {
		for msg := range client.Send {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Println("WebSocket write error:", err)
				return
			}
		}
	}()

	// client -> hub (group membership + keepalive)
	for {
		var msg wsClientMessage
		if err := c.ReadJSON(&msg); err != nil {
			log.Printf("WebSocket read error for user %s: %v\n", userUUID, err)
			break
		}

		switch msg.Action {
		case "join":
			if msg.Group != "" {
				h.Hub.JoinGroup(client.ID, msg.Group)
			}
		case "leave":
			if msg.Group != "" {
				h.Hub.LeaveGroup(client.ID, msg.Group)
			}
		case "pong":
			// keepalive, nothing to do
		}
	}
}
