package ws

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Handler upgrades an operator connection. The "events" query parameter
// limits the subscription, e.g. ?events=attendance.marked,user.registered.
func Handler(hub *Hub, logger *slog.Logger) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		client := &Client{
			id:     uuid.New(),
			hub:    hub,
			conn:   c,
			topics: ParseEventTypes(c.Query("events")),
			send:   make(chan []byte, 256),
		}

		if !hub.join(client) {
			logger.Debug("operator rejected, hub stopped", "client_id", client.id)
			return
		}
		logger.Debug("operator connected", "client_id", client.id)

		go client.WritePump()
		client.ReadPump()

		logger.Debug("operator disconnected", "client_id", client.id)
	})
}

func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}
