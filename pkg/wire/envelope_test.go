package wire

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNewEnvelopeStampsTimestamp(t *testing.T) {
	env, err := NewEnvelope(TypeNotification, Notification{Type: "info", Title: "hi"})
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	if env.Type != TypeNotification {
		t.Errorf("type = %q, want %q", env.Type, TypeNotification)
	}
	if env.Timestamp == "" {
		t.Fatal("timestamp not stamped")
	}
	if _, err := time.Parse(time.RFC3339Nano, env.Timestamp); err != nil {
		t.Errorf("timestamp %q not RFC3339: %v", env.Timestamp, err)
	}
}

func TestNewEnvelopeNilPayload(t *testing.T) {
	env, err := NewEnvelope(TypePing, nil)
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	if len(env.Data) != 0 {
		t.Errorf("ping data = %q, want empty", env.Data)
	}
}

func TestDecodePayloadGenerationUpdate(t *testing.T) {
	frame := `{
		"type": "generation_update",
		"data": {
			"generationId": "gen-1",
			"status": "generating",
			"progress": {"stage": "generate", "percentage": 40, "message": "Writing files"}
		},
		"timestamp": "2026-01-01T00:00:00Z"
	}`

	var env Envelope
	if err := json.Unmarshal([]byte(frame), &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	payload, err := env.DecodePayload()
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	upd, ok := payload.(*GenerationUpdate)
	if !ok {
		t.Fatalf("payload type = %T, want *GenerationUpdate", payload)
	}
	if upd.GenerationID != "gen-1" {
		t.Errorf("generationId = %q", upd.GenerationID)
	}
	if upd.Status != GenerationGenerating {
		t.Errorf("status = %q", upd.Status)
	}
	if upd.Progress.Percentage != 40 {
		t.Errorf("percentage = %v", upd.Progress.Percentage)
	}
}

func TestDecodePayloadDeploymentUpdate(t *testing.T) {
	env := Envelope{
		Type: TypeDeploymentUpdate,
		Data: json.RawMessage(`{"deploymentId":"dep-1","appId":"app-1","status":"completed","url":"https://x.example.com"}`),
	}
	payload, err := env.DecodePayload()
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	upd, ok := payload.(*DeploymentUpdate)
	if !ok {
		t.Fatalf("payload type = %T, want *DeploymentUpdate", payload)
	}
	if upd.DeploymentID != "dep-1" || upd.AppID != "app-1" {
		t.Errorf("ids = %q/%q", upd.DeploymentID, upd.AppID)
	}
	if upd.Status != DeploymentCompleted || upd.URL == "" {
		t.Errorf("status = %q url = %q", upd.Status, upd.URL)
	}
}

func TestDecodePayloadNotification(t *testing.T) {
	env := Envelope{
		Type: TypeNotification,
		Data: json.RawMessage(`{"id":"n-1","type":"warning","title":"Heads up","message":"something","options":{"sticky":true}}`),
	}
	payload, err := env.DecodePayload()
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	n, ok := payload.(*Notification)
	if !ok {
		t.Fatalf("payload type = %T, want *Notification", payload)
	}
	if n.Type != "warning" || n.Title != "Heads up" {
		t.Errorf("notification = %+v", n)
	}
	if sticky, _ := n.Options["sticky"].(bool); !sticky {
		t.Errorf("options not preserved: %+v", n.Options)
	}
}

func TestDecodePayloadControlTypes(t *testing.T) {
	ping := Envelope{Type: TypePing}
	payload, err := ping.DecodePayload()
	if err != nil {
		t.Fatalf("DecodePayload ping: %v", err)
	}
	if _, ok := payload.(Ping); !ok {
		t.Errorf("ping payload type = %T", payload)
	}

	pong := Envelope{Type: TypePong}
	payload, err = pong.DecodePayload()
	if err != nil {
		t.Fatalf("DecodePayload pong: %v", err)
	}
	if _, ok := payload.(Pong); !ok {
		t.Errorf("pong payload type = %T", payload)
	}
}

func TestDecodePayloadUnknownTypeIsNotAnError(t *testing.T) {
	env := Envelope{
		Type: MessageType("future_feature"),
		Data: json.RawMessage(`{"anything":"goes"}`),
	}
	payload, err := env.DecodePayload()
	if err != nil {
		t.Fatalf("unknown type should not error, got %v", err)
	}
	u, ok := payload.(*Unknown)
	if !ok {
		t.Fatalf("payload type = %T, want *Unknown", payload)
	}
	if u.MessageType() != "future_feature" {
		t.Errorf("unknown type = %q", u.MessageType())
	}
	if !strings.Contains(string(u.Data), "goes") {
		t.Errorf("raw data not preserved: %q", u.Data)
	}
}

func TestDecodePayloadMalformedDataForKnownType(t *testing.T) {
	env := Envelope{
		Type: TypeGenerationUpdate,
		Data: json.RawMessage(`"not an object"`),
	}
	if _, err := env.DecodePayload(); err == nil {
		t.Fatal("want error for malformed generation_update data")
	}
}
