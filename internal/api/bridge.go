package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"simlink/pkg/functable"
	"simlink/pkg/session"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 8192
	sendBufferSize = 256
)

// ErrDetached is returned when no session is attached.
var ErrDetached = errors.New("no session attached")

// SessionSource yields the running session, if any.
type SessionSource interface {
	Session() (*session.Session, bool)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The bridge listens on localhost for cockpit front-ends.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans changed values out to every connected cockpit and feeds their
// actions into the running session. It implements session.Sink.
type Hub struct {
	src    SessionSource
	logger *slog.Logger

	register   chan *client
	unregister chan *client
	broadcast  chan Message

	// running is set while Run serves; done is closed when it returns.
	running atomic.Bool
	done    chan struct{}

	mu      sync.RWMutex
	clients map[*client]bool
}

// NewHub creates a hub for the sessions of src.
func NewHub(src SessionSource) *Hub {
	return &Hub{
		src:        src,
		logger:     slog.Default().With("component", "bridge"),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Message, 256),
		done:       make(chan struct{}),
		clients:    make(map[*client]bool),
	}
}

// Run serves the hub until ctx is cancelled, then disconnects all clients.
func (h *Hub) Run(ctx context.Context) {
	h.running.Store(true)
	defer func() {
		h.running.Store(false)
		close(h.done)
	}()

	h.logger.Info("Bridge hub started")
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.logger.Info("Bridge hub stopped")
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("Cockpit connected", "remote_addr", c.conn.RemoteAddr().String(), "clients", n)
			h.sendSnapshot(c)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.logger.Info("Cockpit disconnected", "remote_addr", c.conn.RemoteAddr().String(), "clients", len(h.clients))
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg)
			if err != nil {
				h.logger.Error("Failed to marshal broadcast message", "error", err)
				continue
			}
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- data:
				default:
					// Slow or dead client
					close(c.send)
					delete(h.clients, c)
					h.logger.Warn("Client send buffer full, disconnecting", "remote_addr", c.conn.RemoteAddr().String())
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish implements session.Sink. Updates are discarded unless Run is
// serving.
func (h *Hub) Publish(sessionID string, updates []functable.Update) {
	if !h.running.Load() {
		return
	}
	msg := Message{Type: MessageTypeUpdates, Timestamp: time.Now(), Session: sessionID, Data: updates}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("Bridge broadcast channel full, updates dropped", "updates", len(updates))
	}
}

// ClientCount returns the number of connected cockpits.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Enqueue hands an action to the running session.
func (h *Hub) Enqueue(a ActionRequest) error {
	sess, ok := h.src.Session()
	if !ok {
		return ErrDetached
	}
	req, err := a.Request()
	if err != nil {
		return err
	}
	return sess.Enqueue(req)
}

func (h *Hub) sendSnapshot(c *client) {
	sess, ok := h.src.Session()
	if !ok {
		return
	}
	c.sendMessage(Message{Type: MessageTypeSnapshot, Timestamp: time.Now(), Session: sess.ID(), Data: sess.Snapshot()})
}

// ServeWs upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade error", "error", err, "remote_addr", r.RemoteAddr)
		return
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBufferSize)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// sendMessage queues msg unless the hub already dropped the client.
func (c *client) sendMessage(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inbound
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("WebSocket read error", "error", err, "remote_addr", c.conn.RemoteAddr().String())
			}
			return
		}
		c.handle(msg)
	}
}

func (c *client) handle(msg inbound) {
	if msg.Type != MessageTypeAction {
		c.hub.logger.Debug("Ignoring client message", "type", msg.Type)
		return
	}
	var a ActionRequest
	if err := json.Unmarshal(msg.Data, &a); err != nil {
		c.sendError(err)
		return
	}
	if err := c.hub.Enqueue(a); err != nil {
		c.sendError(err)
	}
}

func (c *client) sendError(err error) {
	c.sendMessage(Message{Type: MessageTypeError, Timestamp: time.Now(), Data: map[string]string{"error": err.Error()}})
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
