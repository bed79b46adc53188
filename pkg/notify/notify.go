// Package notify forwards server-pushed notification envelopes and local
// transport-status notifications into an external notification sink.
package notify

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/lightforgemedia/go-realtime/pkg/client"
	"github.com/lightforgemedia/go-realtime/pkg/wire"
)

// Sink is the external notification collaborator. Notify is fire-and-forget;
// no return value is consumed.
type Sink interface {
	Notify(n wire.Notification)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(n wire.Notification)

func (f SinkFunc) Notify(n wire.Notification) { f(n) }

// Conn is the slice of the connection surface the bridge observes. A
// *client.Client satisfies it.
type Conn interface {
	OnMessage(fn client.MessageHandler) func()
	OnConnect(fn client.EventHandler) func()
	OnDisconnect(fn client.EventHandler) func()
	OnError(fn client.ErrorHandler) func()
}

// Bridge feeds two distinct streams into the same sink: server-pushed
// notification payloads, forwarded verbatim, and locally synthesized
// transport-status notifications ("connected", "connection failed",
// "connection interrupted").
type Bridge struct {
	sink    Sink
	logger  *slog.Logger
	removes []func()
}

// NewBridge registers the bridge's listeners on conn. Close unregisters
// them.
func NewBridge(conn Conn, sink Sink, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bridge{sink: sink, logger: logger}

	b.removes = append(b.removes,
		// Type filtering happens here, not in the router.
		conn.OnMessage(func(_ *wire.Envelope, payload wire.Payload) {
			if n, ok := payload.(*wire.Notification); ok {
				b.sink.Notify(*n)
			}
		}),
		conn.OnConnect(func() {
			b.local("success", "Connected", "Realtime connection established")
		}),
		conn.OnDisconnect(func() {
			b.local("warning", "Connection interrupted", "Realtime connection lost")
		}),
		conn.OnError(func(err error) {
			b.logger.Debug("bridging transport error", "error", err)
			b.local("error", "Connection failed", "Realtime connection error")
		}),
	)
	return b
}

// Close unregisters the bridge's listeners.
func (b *Bridge) Close() {
	for _, remove := range b.removes {
		remove()
	}
	b.removes = nil
}

func (b *Bridge) local(typ, title, message string) {
	b.sink.Notify(wire.Notification{
		ID:      uuid.NewString(),
		Type:    typ,
		Title:   title,
		Message: message,
	})
}
