package handlers

import (
	"log"

	"coldtrack/internal/adapters/ws"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WSHandler handles websocket subscriptions for live temperature updates
type WSHandler struct {
	hub *ws.Hub
}

// NewWSHandler creates a new websocket handler
func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Upgrade rejects non-websocket requests before the upgrade handler runs
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Subscribe registers the connection on the hub and blocks reading until
// the client disconnects. Inbound frames are discarded; the socket is
// push-only.
func (h *WSHandler) Subscribe() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		h.hub.Register(conn)
		defer h.hub.Unregister(conn)

		log.Printf("🔌 Subscriber connected (%d active)", h.hub.Count())

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		log.Printf("🔌 Subscriber disconnected (%d active)", h.hub.Count()-1)
	})
}
