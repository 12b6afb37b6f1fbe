package realtime

import (
	"encoding/json"
	"log"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type clientMessage struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// Upgrade guards the websocket route: plain HTTP requests get 426.
func Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler runs the push-channel read loop. A connection is unassociated and
// receives nothing until the client sends
// {"type":"authenticate","userId":"..."}.
func Handler(hub *Hub) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		defer func() {
			hub.Unregister(conn)
			_ = conn.Close()
		}()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}

			var msg clientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Printf("websocket message error: %v", err)
				continue
			}
			if msg.Type == "authenticate" && msg.UserID != "" {
				hub.Register(msg.UserID, conn)
			}
		}
	})
}
