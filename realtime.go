// realtime.go
package realtime

import (
	"log/slog"

	"github.com/lightforgemedia/go-realtime/pkg/client"
	"github.com/lightforgemedia/go-realtime/pkg/notify"
	"github.com/lightforgemedia/go-realtime/pkg/server"
	"github.com/lightforgemedia/go-realtime/pkg/subscription"
	"github.com/lightforgemedia/go-realtime/pkg/wire"
)

// Re-export core types
type (
	Envelope         = wire.Envelope
	MessageType      = wire.MessageType
	Payload          = wire.Payload
	GenerationUpdate = wire.GenerationUpdate
	DeploymentUpdate = wire.DeploymentUpdate
	Notification     = wire.Notification
	Progress         = wire.Progress

	Client         = client.Client
	State          = client.State
	Option         = client.Option
	MessageHandler = client.MessageHandler
	EventHandler   = client.EventHandler
	ErrorHandler   = client.ErrorHandler

	Generation = subscription.Generation
	Deployment = subscription.Deployment

	Sink     = notify.Sink
	SinkFunc = notify.SinkFunc
	Bridge   = notify.Bridge

	Hub = server.Hub
)

// Re-export error values
var (
	ErrNotConnected = client.ErrNotConnected
)

// Re-export envelope type constants
const (
	TypeGenerationUpdate = wire.TypeGenerationUpdate
	TypeDeploymentUpdate = wire.TypeDeploymentUpdate
	TypeNotification     = wire.TypeNotification
	TypePing             = wire.TypePing
	TypePong             = wire.TypePong
)

// NewClient builds a connection manager for the given ws(s) endpoint. It does
// not connect; call Connect on the result.
func NewClient(endpoint string, opts ...Option) *Client {
	return client.New(endpoint, opts...)
}

// NewEnvelope wraps payload in an outbound envelope of the given type.
func NewEnvelope(typ MessageType, payload any) (Envelope, error) {
	return wire.NewEnvelope(typ, payload)
}

// NewGeneration builds a view over generation updates for one id at a time.
func NewGeneration(src subscription.Source) *Generation {
	return subscription.NewGeneration(src)
}

// NewDeployment builds a view over deployment updates for one id at a time.
func NewDeployment(src subscription.Source) *Deployment {
	return subscription.NewDeployment(src)
}

// NewBridge forwards notification payloads and transport-status changes from
// conn into sink.
func NewBridge(conn notify.Conn, sink Sink, logger *slog.Logger) *Bridge {
	return notify.NewBridge(conn, sink, logger)
}

// NewHub builds a broadcast hub for serving realtime clients over HTTP.
func NewHub(logger *slog.Logger) *Hub {
	return server.NewHub(logger)
}
