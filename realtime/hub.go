// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/innitec-lgtm/SupportCenter-v1/ids"
	"github.com/innitec-lgtm/SupportCenter-v1/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 16
)

// SnapshotFunc returns the full-collection messages a client receives on
// connect and whenever it asks for a resync
type SnapshotFunc func(ctx context.Context) ([]models.SyncMessage, error)

// Hub fans collection updates out to every connected client. Delivery is
// best-effort: a client that cannot keep up is disconnected.
type Hub struct {
	upgrader websocket.Upgrader

	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	direct     chan delivery
	done       chan struct{}

	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 64),
		direct:     make(chan delivery, 64),
		done:       make(chan struct{}),
		clients:    make(map[*client]struct{}),
	}
}

// Run owns the client set until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		h.mu.Lock()
		for c := range h.clients {
			close(c.send)
			delete(h.clients, c)
		}
		h.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			slog.Info("sync client connected", "client", c.id, "remote", c.remote, "clients", h.ClientCount())
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			slog.Info("sync client disconnected", "client", c.id, "clients", h.ClientCount())
		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				h.deliver(c, msg)
			}
			h.mu.Unlock()
		case d := <-h.direct:
			h.mu.Lock()
			if _, ok := h.clients[d.to]; ok {
				h.deliver(d.to, d.msg)
			}
			h.mu.Unlock()
		}
	}
}

type delivery struct {
	to  *client
	msg []byte
}

// deliver queues msg for c, dropping c if its buffer is full. Caller holds mu.
func (h *Hub) deliver(c *client, msg []byte) {
	select {
	case c.send <- msg:
	default:
		slog.Warn("dropping slow sync client", "client", c.id)
		delete(h.clients, c)
		close(c.send)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish implements store.Publisher. The collection key maps to the
// "<key>:updated" event.
func (h *Hub) Publish(key string, data []byte, revision uint64) {
	msg, err := json.Marshal(models.SyncMessage{
		Event:    key + ":updated",
		Data:     json.RawMessage(data),
		Revision: revision,
	})
	if err != nil {
		slog.Error("failed to encode sync message", "key", key, "error", err)
		return
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// ServeWS upgrades the request and streams updates to the new client,
// starting with the snapshots.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, remote string, snapshots SnapshotFunc) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	id, _ := ids.GenerateID(6)
	c := &client{
		id:     id,
		remote: remote,
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()

	// the server context is not tied to this request's lifetime
	ctx := context.WithoutCancel(r.Context())
	c.sendSnapshots(ctx, snapshots)
	go c.readPump(ctx, snapshots)
}

type client struct {
	id     string
	remote string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
}

func (c *client) sendSnapshots(ctx context.Context, snapshots SnapshotFunc) {
	msgs, err := snapshots(ctx)
	if err != nil {
		slog.Error("failed to build sync snapshots", "client", c.id, "error", err)
		return
	}
	for _, m := range msgs {
		data, err := json.Marshal(m)
		if err != nil {
			slog.Error("failed to encode snapshot", "client", c.id, "event", m.Event, "error", err)
			continue
		}
		select {
		case c.hub.direct <- delivery{to: c, msg: data}:
		case <-c.hub.done:
			return
		}
	}
}

// readPump handles client requests and detects disconnects
func (c *client) readPump(ctx context.Context, snapshots SnapshotFunc) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg models.SyncMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("sync client read failed", "client", c.id, "error", err)
			}
			return
		}
		if msg.Event == models.EventSync {
			c.sendSnapshots(ctx, snapshots)
		}
	}
}

// writePump is the only writer on the connection
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
