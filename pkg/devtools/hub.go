package devtools

import (
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds a single WebSocket write.
	writeWait = 10 * time.Second

	// sendBuffer is the number of messages queued per client. A client
	// that falls this far behind is dropped.
	sendBuffer = 64
)

// client is one WebSocket connection. Only its write pump writes to conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub manages WebSocket clients and broadcasts messages to them.
// Broadcast never waits on the network, so it is safe to call from router
// and dialog callbacks.
type Hub struct {
	clients   map[*client]bool
	mu        sync.Mutex
	upgrader  websocket.Upgrader
	logger    *slog.Logger
	writeWait time.Duration

	// hello returns the messages sent to a client when it connects.
	hello func() []Message
}

func newHub(logger *slog.Logger, hello func() []Message) *Hub {
	return &Hub{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     SameOriginCheck,
		},
		logger:    logger,
		writeWait: writeWait,
		hello:     hello,
	}
}

// SameOriginCheck accepts requests without an Origin header and requests
// whose origin host equals the request host. The stream sits next to
// state-changing endpoints, so cross-site pages must not reach it.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return r.Host != "" && u.Host == r.Host
}

// ServeHTTP upgrades the connection and keeps it until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	// Queue hello and register under one lock so no broadcast slips in
	// between.
	h.mu.Lock()
	if h.hello != nil {
		for _, msg := range h.hello() {
			if data, ok := h.encode(msg); ok {
				c.send <- data
			}
		}
	}
	h.clients[c] = true
	h.mu.Unlock()

	go h.writePump(c)

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(c)
	conn.Close()
}

// writePump writes queued messages with a deadline until the client is
// removed or a write fails.
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()

	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("websocket write failed", "error", err)
			h.remove(c)
			return
		}
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Broadcast queues a message for all connected clients. Clients whose
// queue is full are dropped.
func (h *Hub) Broadcast(msg Message) {
	data, ok := h.encode(msg)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropping slow websocket client", "type", msg.Type)
			delete(h.clients, c)
			c.close()
		}
	}
}

func (h *Hub) encode(msg Message) ([]byte, bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encode websocket message", "type", msg.Type, "error", err)
		return nil, false
	}
	return data, true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		c.close()
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}
