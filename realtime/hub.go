package realtime

import (
	"log"
	"sync"
)

// Conn is the slice of a websocket connection the hub needs. Satisfied by
// *websocket.Conn; tests substitute a recording fake.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Hub maps authenticated user ids to their single open push connection.
// It is a pure cache over the durable notification rows: losing every entry
// on restart is fine, clients re-authenticate on reconnect.
//
// Construct one Hub in main and hand it to whatever needs push delivery;
// it is not a package-level singleton.
type Hub struct {
	mu      sync.Mutex
	clients map[string]Conn
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]Conn)}
}

// Register binds a user id to a connection. A newer registration for the
// same user replaces the entry; the superseded connection is closed so the
// stale client notices instead of waiting on a socket that never delivers.
func (h *Hub) Register(userID string, conn Conn) {
	h.mu.Lock()
	old := h.clients[userID]
	h.clients[userID] = conn
	h.mu.Unlock()

	if old != nil && old != conn {
		_ = old.Close()
	}
}

// Unregister removes the entry holding exactly this connection. Linear scan:
// the connected-client count in this domain is small.
func (h *Hub) Unregister(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, c := range h.clients {
		if c == conn {
			delete(h.clients, userID)
			return
		}
	}
}

// Send pushes a JSON payload to the user's connection, if any. Best-effort:
// a missing connection or write error is logged and swallowed, the durable
// notification row already exists by the time Send is called.
func (h *Hub) Send(userID string, payload interface{}) {
	h.mu.Lock()
	conn := h.clients[userID]
	h.mu.Unlock()

	if conn == nil {
		return
	}
	if err := conn.WriteJSON(payload); err != nil {
		log.Printf("push to user %s failed: %v", userID, err)
	}
}

// Connected reports whether a user currently has a registered connection.
func (h *Hub) Connected(userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clients[userID] != nil
}
