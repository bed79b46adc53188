package devwatch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lightforgemedia/go-realtime/pkg/wire"
)

type recordingBroadcaster struct {
	envs chan wire.Envelope
}

func (r *recordingBroadcaster) Broadcast(env wire.Envelope) error {
	r.envs <- env
	return nil
}

func TestWatcherPublishesReloadNotification(t *testing.T) {
	dir := t.TempDir()
	rec := &recordingBroadcaster{envs: make(chan wire.Envelope, 8)}

	w, err := New(rec, slog.New(slog.NewTextHandler(io.Discard, nil)), Options{
		Paths:      []string{dir},
		Extensions: []string{".js"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Ignored extension first; it must not produce a notification.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case env := <-rec.envs:
		if env.Type != wire.TypeNotification {
			t.Fatalf("type = %q, want notification", env.Type)
		}
		payload, err := env.DecodePayload()
		if err != nil {
			t.Fatalf("DecodePayload: %v", err)
		}
		n, ok := payload.(*wire.Notification)
		if !ok {
			t.Fatalf("payload = %T", payload)
		}
		if n.Type != "reload" {
			t.Errorf("notification type = %q, want reload", n.Type)
		}
		if filepath.Base(n.Message) != "app.js" {
			t.Errorf("notification message = %q, want the .js path", n.Message)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload notification published")
	}
}
