// Package server provides the broadcast hub that pushes realtime envelopes
// to connected clients. It backs the demo server and the integration tests;
// it is not a production backend.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/lightforgemedia/go-realtime/pkg/wire"
)

const (
	writeTimeout = 5 * time.Second
	maxFrameSize = 1 << 20
)

// Hub accepts WebSocket connections and broadcasts envelopes to them.
// Inbound pings are answered with pongs; other inbound traffic is logged and
// ignored.
type Hub struct {
	logger *slog.Logger

	mu    sync.Mutex
	conns map[string]*hubConn
}

type hubConn struct {
	id     string
	userID string
	sock   *websocket.Conn

	writeMu sync.Mutex
}

// NewHub builds an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{logger: logger, conns: make(map[string]*hubConn)}
}

// ServeHTTP upgrades the request and serves the connection until it closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sock, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.logger.Warn("websocket accept failed", "error", err)
		return
	}
	sock.SetReadLimit(maxFrameSize)

	c := &hubConn{
		id:     uuid.NewString(),
		userID: r.URL.Query().Get("userId"),
		sock:   sock,
	}

	h.mu.Lock()
	h.conns[c.id] = c
	count := len(h.conns)
	h.mu.Unlock()

	logger := h.logger.With("conn_id", c.id, "user_id", c.userID)
	logger.Info("client connected", "clients", count)

	h.read(c, logger)

	h.mu.Lock()
	delete(h.conns, c.id)
	count = len(h.conns)
	h.mu.Unlock()
	logger.Info("client disconnected", "clients", count)
}

func (h *Hub) read(c *hubConn, logger *slog.Logger) {
	for {
		var env wire.Envelope
		if err := wsjson.Read(context.Background(), c.sock, &env); err != nil {
			return
		}
		switch env.Type {
		case wire.TypePing:
			pong, err := wire.NewEnvelope(wire.TypePong, nil)
			if err != nil {
				continue
			}
			if err := h.write(c, pong); err != nil {
				logger.Debug("pong reply failed", "error", err)
				return
			}
		case wire.TypePong:
			// Reply to a hub-initiated ping; nothing to do.
		default:
			logger.Debug("ignoring inbound envelope", "type", env.Type)
		}
	}
}

// Broadcast sends the envelope to every connected client. When the envelope
// carries a userId it only reaches connections registered for that user. The
// timestamp is stamped here if the caller left it empty.
//
// Per-client write failures are logged and the failing client dropped; they
// are not reported to the caller, so the returned error is currently always
// nil. The error return is kept for the Broadcaster interface and future
// fan-out backends.
func (h *Hub) Broadcast(env wire.Envelope) error {
	if env.Timestamp == "" {
		env.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}

	h.mu.Lock()
	targets := make([]*hubConn, 0, len(h.conns))
	for _, c := range h.conns {
		if env.UserID != "" && c.userID != "" && c.userID != env.UserID {
			continue
		}
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		if err := h.write(c, env); err != nil {
			h.logger.Debug("broadcast write failed, dropping client",
				"conn_id", c.id, "error", err)
			c.sock.Close(websocket.StatusAbnormalClosure, "write failed")
		}
	}
	return nil
}

// Publish wraps payload in an envelope of the given type and broadcasts it.
func (h *Hub) Publish(typ wire.MessageType, payload any) error {
	env, err := wire.NewEnvelope(typ, payload)
	if err != nil {
		return err
	}
	return h.Broadcast(env)
}

func (h *Hub) write(c *hubConn, env wire.Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, c.sock, env)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*hubConn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[string]*hubConn)
	h.mu.Unlock()

	for _, c := range conns {
		c.sock.Close(websocket.StatusGoingAway, "hub shutting down")
	}
}
