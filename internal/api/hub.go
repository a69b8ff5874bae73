package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Hub fans JSON messages out to connected websocket clients.
type Hub struct {
	upgrader websocket.Upgrader
	log      *slog.Logger
	greet    func() (any, bool)

	mu      sync.Mutex
	clients map[*websocket.Conn]*sync.Mutex
}

// NewHub returns a hub. greet, when set, supplies the first message sent
// to each new client.
func NewHub(log *slog.Logger, greet func() (any, bool)) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log:     log,
		greet:   greet,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the connection and keeps it registered until the client
// goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	wmu := &sync.Mutex{}
	if h.greet != nil {
		if msg, ok := h.greet(); ok {
			if err := h.write(conn, wmu, msg); err != nil {
				h.log.Warn("websocket greeting failed", "remote", conn.RemoteAddr(), "err", err)
				return
			}
		}
	}

	h.mu.Lock()
	h.clients[conn] = wmu
	h.mu.Unlock()
	h.log.Info("client connected", "remote", conn.RemoteAddr())

	for {
		if _, _, err := conn.NextReader(); err != nil {
			h.remove(conn)
			h.log.Info("client disconnected", "remote", conn.RemoteAddr())
			return
		}
	}
}

// Broadcast sends msg as JSON to every client. Clients that fail are
// dropped.
func (h *Hub) Broadcast(msg any) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	h.mu.Lock()
	targets := make(map[*websocket.Conn]*sync.Mutex, len(h.clients))
	for c, m := range h.clients {
		targets[c] = m
	}
	h.mu.Unlock()

	for c, m := range targets {
		m.Lock()
		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
		err := c.WriteMessage(websocket.TextMessage, b)
		m.Unlock()
		if err != nil {
			h.log.Warn("websocket write failed", "remote", c.RemoteAddr(), "err", err)
			h.remove(c)
			c.Close()
		}
	}
	return nil
}

func (h *Hub) write(c *websocket.Conn, m *sync.Mutex, msg any) error {
	m.Lock()
	defer m.Unlock()
	_ = c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.WriteJSON(msg)
}

func (h *Hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}
