package ws

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type Client struct {
	id     uuid.UUID
	hub    *Hub
	conn   *websocket.Conn
	topics map[EventType]bool
	send   chan []byte
}

// Wants reports whether the client subscribed to the event type.
func (c *Client) Wants(t EventType) bool {
	return len(c.topics) == 0 || c.topics[t]
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.leave(c)
		_ = c.conn.Close()
	}()

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}
