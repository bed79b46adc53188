// Package wire defines the envelope exchanged over the realtime transport
// and the typed payloads it carries.
package wire

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType discriminates the payload carried by an Envelope.
type MessageType string

const (
	TypeGenerationUpdate MessageType = "generation_update"
	TypeDeploymentUpdate MessageType = "deployment_update"
	TypeNotification     MessageType = "notification"
	TypePing             MessageType = "ping"
	TypePong             MessageType = "pong"
)

// Envelope is the message wrapper exchanged over the transport.
//
// Timestamp is set by the sender at send time and is never touched on the
// receiving side.
type Envelope struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp string          `json:"timestamp"`
	UserID    string          `json:"userId,omitempty"`
}

// NewEnvelope builds an outbound envelope, marshalling payload into Data and
// stamping the current time. A nil payload leaves Data empty (used by the
// ping/pong control envelopes).
func NewEnvelope(typ MessageType, payload any) (Envelope, error) {
	env := Envelope{
		Type:      typ,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Envelope{}, fmt.Errorf("marshal %s payload: %w", typ, err)
		}
		env.Data = data
	}
	return env, nil
}

// Payload is the decoded form of an Envelope's Data field. Concrete types are
// *GenerationUpdate, *DeploymentUpdate, *Notification, Ping, Pong and
// *Unknown.
type Payload interface {
	MessageType() MessageType
}

// Ping is the heartbeat probe. It carries no data.
type Ping struct{}

// Pong answers a Ping. It carries no data.
type Pong struct{}

// Unknown is the fallback branch for envelope types this build does not know
// about. The raw data is preserved so listeners can still inspect it.
type Unknown struct {
	Type MessageType
	Data json.RawMessage
}

func (Ping) MessageType() MessageType       { return TypePing }
func (Pong) MessageType() MessageType       { return TypePong }
func (u *Unknown) MessageType() MessageType { return u.Type }

// DecodePayload unmarshals the envelope's Data according to its Type.
// Unrecognised types decode to *Unknown rather than an error; a malformed
// Data field for a known type is an error and the caller is expected to drop
// the frame.
func (e *Envelope) DecodePayload() (Payload, error) {
	switch e.Type {
	case TypeGenerationUpdate:
		var u GenerationUpdate
		if err := json.Unmarshal(e.Data, &u); err != nil {
			return nil, fmt.Errorf("decode generation_update: %w", err)
		}
		return &u, nil
	case TypeDeploymentUpdate:
		var u DeploymentUpdate
		if err := json.Unmarshal(e.Data, &u); err != nil {
			return nil, fmt.Errorf("decode deployment_update: %w", err)
		}
		return &u, nil
	case TypeNotification:
		var n Notification
		if err := json.Unmarshal(e.Data, &n); err != nil {
			return nil, fmt.Errorf("decode notification: %w", err)
		}
		return &n, nil
	case TypePing:
		return Ping{}, nil
	case TypePong:
		return Pong{}, nil
	default:
		return &Unknown{Type: e.Type, Data: e.Data}, nil
	}
}
