// Package client implements the realtime connection manager: a single duplex
// WebSocket owned by one Client, a heartbeat monitor, a typed message router,
// and a reconnect-with-backoff policy.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/lightforgemedia/go-realtime/pkg/wire"
)

// ErrNotConnected is returned by Send when the transport is not open. The
// message is dropped; no outbound queue is maintained while disconnected.
var ErrNotConnected = errors.New("realtime: not connected")

// State is the current phase of the underlying transport.
type State int32

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return "closed"
	}
}

const maxFrameSize = 1 << 20 // 1MB, matches what the hub will accept

// Client owns the single duplex socket. Construct one explicitly with New and
// hand it to consumers; there is no package-level singleton.
type Client struct {
	cfg    config
	logger *slog.Logger

	router *Router
	hb     *heartbeatMonitor

	state atomic.Int32

	writeMu sync.Mutex

	mu             sync.Mutex
	conn           *websocket.Conn
	manualClose    bool
	attempts       int
	reconnectTimer *time.Timer
}

// New builds a Client for the given ws(s) endpoint. It does not connect;
// call Connect.
func New(endpoint string, opts ...Option) *Client {
	cfg := defaultConfig(endpoint)
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Client{cfg: cfg, logger: cfg.logger}
	c.router = newRouter(cfg.logger)
	c.hb = newHeartbeatMonitor(cfg.pingInterval, c.Send, cfg.logger)
	c.router.control = c.hb
	return c
}

// State reads the transport's current phase.
func (c *Client) State() State { return State(c.state.Load()) }

// IsConnected reports whether the transport is open.
func (c *Client) IsConnected() bool { return c.State() == StateOpen }

// OnMessage registers a listener for all non-control inbound envelopes and
// returns its removal handle.
func (c *Client) OnMessage(fn MessageHandler) func() { return c.router.OnMessage(fn) }

// OnConnect registers a listener fired once per successful open.
func (c *Client) OnConnect(fn EventHandler) func() { return c.router.OnConnect(fn) }

// OnDisconnect registers a listener fired once per socket close.
func (c *Client) OnDisconnect(fn EventHandler) func() { return c.router.OnDisconnect(fn) }

// OnError registers a listener for transport errors.
func (c *Client) OnError(fn ErrorHandler) func() { return c.router.OnError(fn) }

// Connect closes any existing connection, opens a new socket to the
// configured endpoint, and returns once the open succeeds or fails. The
// attempt counter and backoff reset to their initial values only on a
// successful open. A pre-open failure is returned to the caller; if
// auto-reconnect is enabled it also schedules a retry.
//
// If Close lands while the dial is still in flight, the fresh connection is
// discarded and the client stays closed. When Connect replaces a live
// connection, the old socket still reports its own disconnect event; the
// ordering of that event relative to the new connection's connect event is
// not defined.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	c.manualClose = false
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	old := c.conn
	c.conn = nil
	c.mu.Unlock()

	if old != nil {
		c.hb.Stop()
		old.Close(websocket.StatusNormalClosure, "replaced by new connect")
	}

	return c.dial(ctx)
}

func (c *Client) dial(ctx context.Context) error {
	c.state.Store(int32(StateConnecting))

	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.dialTimeout)
	conn, _, err := websocket.Dial(dialCtx, c.endpoint(), nil)
	cancel()
	if err != nil {
		c.state.Store(int32(StateClosed))
		c.mu.Lock()
		if c.cfg.autoReconnect && !c.manualClose {
			c.scheduleReconnectLocked()
		}
		c.mu.Unlock()
		return fmt.Errorf("dial %s: %w", c.cfg.url, err)
	}
	conn.SetReadLimit(maxFrameSize)

	c.mu.Lock()
	if c.manualClose {
		// Close landed while the dial was in flight. Discard the fresh
		// connection instead of resurrecting a closed client.
		c.mu.Unlock()
		c.state.Store(int32(StateClosed))
		conn.Close(websocket.StatusNormalClosure, "closed during dial")
		return nil
	}
	c.conn = conn
	c.attempts = 0
	c.mu.Unlock()
	c.state.Store(int32(StateOpen))

	c.hb.Start()
	go c.readLoop(conn)

	c.logger.Info("connected", "url", c.cfg.url)
	c.router.emitConnect()
	return nil
}

// endpoint returns the configured URL with the optional userId query
// parameter applied.
func (c *Client) endpoint() string {
	if c.cfg.userID == "" {
		return c.cfg.url
	}
	u, err := url.Parse(c.cfg.url)
	if err != nil {
		return c.cfg.url
	}
	q := u.Query()
	q.Set("userId", c.cfg.userID)
	u.RawQuery = q.Encode()
	return u.String()
}

// Close sets the manual-close flag, suppressing auto-reconnect, stops the
// heartbeat, cancels any pending reconnect, and closes the socket.
func (c *Client) Close() error {
	c.mu.Lock()
	c.manualClose = true
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	conn := c.conn
	c.mu.Unlock()

	c.hb.Stop()

	if conn == nil {
		c.state.Store(int32(StateClosed))
		return nil
	}

	c.state.Store(int32(StateClosing))
	// The read loop observes the close and finishes the transition.
	return conn.Close(websocket.StatusNormalClosure, "client closed")
}

// Send writes one envelope. It requires the transport to be open; otherwise
// the message is logged and dropped — there is no outbound queue while
// disconnected. The timestamp is stamped here, at send time.
func (c *Client) Send(env wire.Envelope) error {
	if c.State() != StateOpen {
		c.logger.Warn("send while not connected, dropping message", "type", env.Type)
		return ErrNotConnected
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		c.logger.Warn("send while not connected, dropping message", "type", env.Type)
		return ErrNotConnected
	}

	if env.Timestamp == "" {
		env.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if env.UserID == "" {
		env.UserID = c.cfg.userID
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.writeTimeout)
	defer cancel()
	if err := wsjson.Write(ctx, conn, env); err != nil {
		return fmt.Errorf("write %s envelope: %w", env.Type, err)
	}
	return nil
}

// readLoop delivers inbound frames to the router strictly in arrival order.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, frame, err := conn.Read(context.Background())
		if err != nil {
			c.handleClose(conn, err)
			return
		}
		c.router.dispatch(frame)
	}
}

func (c *Client) handleClose(conn *websocket.Conn, err error) {
	c.mu.Lock()
	current := conn == c.conn
	wasManual := c.manualClose
	if current {
		c.conn = nil
		c.state.Store(int32(StateClosed))
	}
	c.mu.Unlock()

	if !current {
		// A connection replaced by a newer Connect. Its close is still
		// reported, so a notification bridge may surface an interruption
		// right around the replacement's connect event, but the live
		// connection, heartbeat, and reconnect state stay untouched.
		c.router.emitDisconnect()
		return
	}

	c.hb.Stop()

	status := websocket.CloseStatus(err)
	abnormal := status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway
	if abnormal && !wasManual {
		c.logger.Warn("connection lost", "error", err)
		c.router.emitError(err)
	} else {
		c.logger.Debug("connection closed", "status", status)
	}

	c.router.emitDisconnect()

	if !wasManual && c.cfg.autoReconnect {
		c.mu.Lock()
		c.scheduleReconnectLocked()
		c.mu.Unlock()
	}
}

// scheduleReconnectLocked arms the reconnect timer for the next attempt.
// After the configured number of attempts it stops scheduling and raises no
// terminal signal; the application only learns about persistent failure
// indirectly. Callers hold c.mu.
func (c *Client) scheduleReconnectLocked() {
	if c.attempts >= c.cfg.maxReconnects {
		c.logger.Warn("reconnect attempts exhausted, giving up", "attempts", c.attempts)
		return
	}

	delay := reconnectDelay(c.cfg.backoffBase, c.cfg.backoffCap, c.attempts)
	c.attempts++
	attempt := c.attempts

	c.logger.Info("scheduling reconnect", "attempt", attempt, "delay", delay)
	c.reconnectTimer = time.AfterFunc(delay, func() { c.redial(attempt) })
}

func (c *Client) redial(attempt int) {
	c.mu.Lock()
	if c.manualClose {
		c.mu.Unlock()
		return
	}
	c.reconnectTimer = nil
	c.mu.Unlock()

	c.logger.Info("reconnecting", "attempt", attempt)
	if err := c.dial(context.Background()); err != nil {
		c.logger.Warn("reconnect failed", "attempt", attempt, "error", err)
	}
}

// reconnectDelay computes the backoff before the next attempt given how many
// attempts have already been scheduled. No jitter is applied.
func reconnectDelay(base, cap time.Duration, prior int) time.Duration {
	delay := base << prior
	if delay <= 0 || delay > cap {
		delay = cap
	}
	return delay
}
