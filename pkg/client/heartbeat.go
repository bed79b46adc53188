package client

import (
	"log/slog"
	"sync"
	"time"

	"github.com/lightforgemedia/go-realtime/pkg/wire"
)

// heartbeatMonitor owns the single liveness timer. While running it sends a
// ping envelope every interval; inbound pings are answered with a pong
// immediately, inbound pongs are consumed silently. No liveness timeout is
// derived from missed pongs.
type heartbeatMonitor struct {
	interval time.Duration
	send     func(wire.Envelope) error
	logger   *slog.Logger

	mu   sync.Mutex
	stop chan struct{}
}

func newHeartbeatMonitor(interval time.Duration, send func(wire.Envelope) error, logger *slog.Logger) *heartbeatMonitor {
	return &heartbeatMonitor{interval: interval, send: send, logger: logger}
}

// Start begins the ping timer, replacing any previous one.
func (h *heartbeatMonitor) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stop != nil {
		close(h.stop)
	}
	h.stop = make(chan struct{})
	go h.loop(h.stop)
}

// Stop cancels the ping timer. Safe to call repeatedly.
func (h *heartbeatMonitor) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stop != nil {
		close(h.stop)
		h.stop = nil
	}
}

func (h *heartbeatMonitor) loop(stop chan struct{}) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			env, err := wire.NewEnvelope(wire.TypePing, nil)
			if err != nil {
				continue
			}
			if err := h.send(env); err != nil {
				h.logger.Debug("heartbeat ping not sent", "error", err)
			}
		}
	}
}

// HandlePing answers a remote ping with a pong. The reply is written
// synchronously from the read loop so it goes out before any other outbound
// traffic.
func (h *heartbeatMonitor) HandlePing() {
	env, err := wire.NewEnvelope(wire.TypePong, nil)
	if err != nil {
		return
	}
	if err := h.send(env); err != nil {
		h.logger.Debug("pong reply not sent", "error", err)
	}
}

// HandlePong consumes a remote pong.
func (h *heartbeatMonitor) HandlePong() {
	h.logger.Debug("pong received")
}
