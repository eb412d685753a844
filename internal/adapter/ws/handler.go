// Package ws implements the WebSocket adapter pushing orchestration events
// (chat responses, ingestion completions, availability transitions) to
// connected clients.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
)

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SnapshotFunc produces the state message pushed to a connection as soon as
// it is accepted. Reconnecting clients resynchronize from it instead of
// polling; ok=false skips the push.
type SnapshotFunc func() (msg Message, ok bool)

// conn wraps a single WebSocket connection.
type conn struct {
	ws     *websocket.Conn
	cancel context.CancelFunc
}

// Hub manages the active WebSocket connections, fans broadcast events out to
// all of them, and seeds new connections with the current state snapshot.
type Hub struct {
	mu       sync.RWMutex
	conns    map[*conn]struct{}
	snapshot SnapshotFunc
}

// NewHub creates an empty hub with no snapshot configured.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[*conn]struct{}),
	}
}

// SetSnapshot registers the state snapshot sent to each new connection.
// Must be called before the hub starts accepting.
func (h *Hub) SetSnapshot(fn SnapshotFunc) {
	h.snapshot = fn
}

// HandleWS upgrades the request to a WebSocket connection and registers it
// with the hub until the peer disconnects.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS handled by middleware
	})
	if err != nil {
		slog.Error("websocket accept failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	c := &conn{ws: ws, cancel: cancel}

	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()

	slog.Info("websocket connected", "remote", r.RemoteAddr)

	if h.snapshot != nil {
		if msg, ok := h.snapshot(); ok {
			h.send(ctx, c, msg)
		}
	}

	// Read loop (to detect disconnects and consume pings)
	go func() {
		defer func() {
			h.remove(c)
			_ = ws.Close(websocket.StatusNormalClosure, "")
		}()
		for {
			if _, _, err := ws.Read(ctx); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends a message to all connected clients. Writes that fail drop
// the connection; the next event is not retried for it.
func (h *Hub) Broadcast(ctx context.Context, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.conns {
		h.send(ctx, c, msg)
	}
}

func (h *Hub) send(ctx context.Context, c *conn, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("websocket marshal failed", "type", msg.Type, "error", err)
		return
	}
	if err := c.ws.Write(ctx, websocket.MessageText, data); err != nil {
		slog.Debug("websocket write failed", "type", msg.Type, "error", err)
		go h.remove(c)
	}
}

// ConnectionCount returns the number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) remove(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[c]; ok {
		c.cancel()
		delete(h.conns, c)
		slog.Info("websocket disconnected")
	}
}
