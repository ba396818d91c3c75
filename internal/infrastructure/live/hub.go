// Package live pushes mutation events to connected viewers over websockets.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// maxInboundMessage bounds what a viewer may send; inbound messages are discarded
const maxInboundMessage = 4096

// Frame is the JSON text message sent to viewers, e.g. {"event":"job_created","data":{...}}
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// EncodeFrame serializes one named event
func EncodeFrame(name string, payload any) ([]byte, error) {
	data, err := json.Marshal(Frame{Event: name, Data: payload})
	if err != nil {
		return nil, fmt.Errorf("encoding %s frame: %w", name, err)
	}
	return data, nil
}

// HubConfig holds websocket hub settings
type HubConfig struct {
	PingInterval time.Duration
	WriteTimeout time.Duration
	SendBuffer   int
	// CheckOrigin decides which browser origins may connect; nil accepts all
	CheckOrigin func(r *http.Request) bool
}

func (c *HubConfig) applyDefaults() {
	if c.PingInterval <= 0 {
		c.PingInterval = 30 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 32
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = func(*http.Request) bool { return true }
	}
}

type client struct {
	id   int64
	conn *websocket.Conn
	send chan []byte
}

// Hub keeps the set of connected viewers and fans frames out to them.
// Delivery is best effort: a viewer whose send buffer is full misses the frame,
// and viewers that connect later get no replay.
type Hub struct {
	cfg      HubConfig
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.RWMutex
	clients map[int64]*client
	closed  bool
	nextID  atomic.Int64
	dropped atomic.Int64
}

// NewHub creates a hub
func NewHub(cfg HubConfig, logger *zap.Logger) *Hub {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     cfg.CheckOrigin,
		},
		logger:  logger.Named("live"),
		clients: make(map[int64]*client),
	}
}

// Broadcast sends the named event to every connected viewer
func (h *Hub) Broadcast(ctx context.Context, name string, payload any) error {
	frame, err := EncodeFrame(name, payload)
	if err != nil {
		return err
	}
	h.Deliver(frame)
	return nil
}

// Deliver queues an encoded frame on every viewer and returns how many accepted it
func (h *Hub) Deliver(frame []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, c := range h.clients {
		select {
		case c.send <- frame:
			delivered++
		default:
			h.dropped.Add(1)
			h.logger.Debug("viewer send buffer full, frame dropped", zap.Int64("client_id", c.id))
		}
	}
	return delivered
}

// ClientCount returns the number of connected viewers
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns the number of frames skipped because a viewer was too slow
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// ServeHTTP upgrades the request to a websocket and serves it until the viewer leaves
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the request
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:   h.nextID.Add(1),
		conn: conn,
		send: make(chan []byte, h.cfg.SendBuffer),
	}
	if !h.register(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(h.cfg.WriteTimeout))
		_ = conn.Close()
		return
	}
	h.logger.Info("viewer connected",
		zap.Int64("client_id", c.id),
		zap.String("remote_addr", r.RemoteAddr),
	)

	done := make(chan struct{})
	go func() {
		h.writePump(c)
		close(done)
	}()
	err = h.readPump(c)
	h.unregister(c)
	<-done

	if err != nil {
		h.logger.Warn("viewer connection failed", zap.Int64("client_id", c.id), zap.Error(err))
	}
	h.logger.Info("viewer disconnected", zap.Int64("client_id", c.id))
}

// Close disconnects every viewer and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.send)
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c.id] = c
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
}

// readPump discards viewer messages and returns when the connection ends.
// A clean close by the viewer is not an error.
func (h *Hub) readPump(c *client) error {
	pongWait := h.cfg.PingInterval + h.cfg.WriteTimeout
	c.conn.SetReadLimit(maxInboundMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				return nil
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return err
			}
			// Network errors mean the viewer went away
			return nil
		}
	}
}

// writePump owns all writes to the connection. It exits when the send channel is
// closed or a write fails, and closes the connection on the way out.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
