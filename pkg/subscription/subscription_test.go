package subscription

import (
	"testing"

	"github.com/lightforgemedia/go-realtime/pkg/client"
	"github.com/lightforgemedia/go-realtime/pkg/wire"
)

// fakeSource dispatches payloads synchronously to registered listeners, the
// same way the client's read loop does.
type fakeSource struct {
	listeners map[int]client.MessageHandler
	next      int
}

func newFakeSource() *fakeSource {
	return &fakeSource{listeners: make(map[int]client.MessageHandler)}
}

func (f *fakeSource) OnMessage(fn client.MessageHandler) func() {
	id := f.next
	f.next++
	f.listeners[id] = fn
	return func() { delete(f.listeners, id) }
}

func (f *fakeSource) emit(payload wire.Payload) {
	env := &wire.Envelope{Type: payload.MessageType()}
	for _, fn := range f.listeners {
		fn(env, payload)
	}
}

func generationUpdate(id string, status wire.GenerationStatus, pct float64) *wire.GenerationUpdate {
	return &wire.GenerationUpdate{
		GenerationID: id,
		Status:       status,
		Progress:     wire.Progress{Stage: "generate", Percentage: pct},
	}
}

func TestGenerationTracksMatchingUpdates(t *testing.T) {
	src := newFakeSource()
	g := NewGeneration(src)
	defer g.Close()

	if g.IsLoading() {
		t.Error("loading before any id is set")
	}

	g.SetID("gen-1")
	if !g.IsLoading() {
		t.Error("not loading after SetID")
	}
	if g.Snapshot() != nil {
		t.Error("snapshot not nil before first update")
	}
	if got := g.Progress(); got != (wire.Progress{}) {
		t.Errorf("progress = %+v before first update, want zero", got)
	}

	src.emit(generationUpdate("gen-1", wire.GenerationGenerating, 40))

	if g.IsLoading() {
		t.Error("still loading after first update")
	}
	snap := g.Snapshot()
	if snap == nil || snap.Progress.Percentage != 40 {
		t.Fatalf("snapshot = %+v, want percentage 40", snap)
	}
	if g.IsCompleted() || g.IsFailed() || g.IsCancelled() {
		t.Error("terminal flags set for a non-terminal status")
	}
}

func TestGenerationTerminalStates(t *testing.T) {
	src := newFakeSource()
	g := NewGeneration(src)
	defer g.Close()
	g.SetID("gen-1")

	src.emit(generationUpdate("gen-1", wire.GenerationCompleted, 100))
	if !g.IsCompleted() {
		t.Error("IsCompleted false after completed update")
	}
	if g.IsFailed() || g.IsCancelled() {
		t.Error("wrong terminal flag set")
	}

	src.emit(generationUpdate("gen-1", wire.GenerationFailed, 100))
	if !g.IsFailed() || g.IsCompleted() {
		t.Error("flags did not follow the failed update")
	}
}

func TestGenerationIgnoresOtherIDs(t *testing.T) {
	src := newFakeSource()
	g := NewGeneration(src)
	defer g.Close()
	g.SetID("gen-1")

	src.emit(generationUpdate("gen-2", wire.GenerationCompleted, 100))

	if g.Snapshot() != nil {
		t.Error("update for another id reached the snapshot")
	}
	if !g.IsLoading() {
		t.Error("loading flag cleared by a foreign update")
	}
}

func TestGenerationIDSwitchResetsState(t *testing.T) {
	src := newFakeSource()
	g := NewGeneration(src)
	defer g.Close()

	g.SetID("gen-a")
	src.emit(generationUpdate("gen-a", wire.GenerationGenerating, 60))

	g.SetID("gen-b")
	if g.Snapshot() != nil {
		t.Error("snapshot survived the id switch")
	}
	if !g.IsLoading() {
		t.Error("not loading after switching to a new id")
	}

	// Late update for the old id must not leak into the new view.
	src.emit(generationUpdate("gen-a", wire.GenerationCompleted, 100))
	if g.Snapshot() != nil || g.IsCompleted() {
		t.Error("update for the previous id reached the new view")
	}

	src.emit(generationUpdate("gen-b", wire.GenerationReviewing, 85))
	if snap := g.Snapshot(); snap == nil || snap.Status != wire.GenerationReviewing {
		t.Errorf("snapshot = %+v, want reviewing update for gen-b", snap)
	}
}

func TestGenerationSetSameIDIsNoOp(t *testing.T) {
	src := newFakeSource()
	g := NewGeneration(src)
	defer g.Close()

	g.SetID("gen-1")
	src.emit(generationUpdate("gen-1", wire.GenerationGenerating, 50))

	g.SetID("gen-1")
	if snap := g.Snapshot(); snap == nil {
		t.Error("re-setting the same id cleared the snapshot")
	}
	if len(src.listeners) != 1 {
		t.Errorf("listeners = %d, want 1", len(src.listeners))
	}
}

func TestGenerationCloseUnregistersListener(t *testing.T) {
	src := newFakeSource()
	g := NewGeneration(src)

	g.SetID("gen-1")
	if len(src.listeners) != 1 {
		t.Fatalf("listeners = %d after SetID, want 1", len(src.listeners))
	}

	g.Close()
	if len(src.listeners) != 0 {
		t.Errorf("listeners = %d after Close, want 0", len(src.listeners))
	}
	if g.ID() != "" || g.IsLoading() || g.Snapshot() != nil {
		t.Error("view not cleared by Close")
	}
}

func deploymentUpdate(id string, status wire.DeploymentStatus, url string) *wire.DeploymentUpdate {
	return &wire.DeploymentUpdate{
		DeploymentID: id,
		AppID:        "app-1",
		Status:       status,
		URL:          url,
	}
}

func TestDeploymentTracksMatchingUpdates(t *testing.T) {
	src := newFakeSource()
	d := NewDeployment(src)
	defer d.Close()

	d.SetID("dep-1")
	if !d.IsLoading() {
		t.Error("not loading after SetID")
	}

	src.emit(deploymentUpdate("dep-1", wire.DeploymentBuilding, ""))
	if d.IsLoading() || d.IsCompleted() {
		t.Error("flags wrong after building update")
	}

	src.emit(deploymentUpdate("dep-1", wire.DeploymentCompleted, "https://app.example.com"))
	if !d.IsCompleted() {
		t.Error("IsCompleted false after completed update")
	}
	if got := d.URL(); got != "https://app.example.com" {
		t.Errorf("url = %q", got)
	}
}

func TestDeploymentIDSwitchIsolation(t *testing.T) {
	src := newFakeSource()
	d := NewDeployment(src)
	defer d.Close()

	d.SetID("dep-a")
	src.emit(deploymentUpdate("dep-a", wire.DeploymentDeploying, ""))

	d.SetID("dep-b")
	src.emit(deploymentUpdate("dep-a", wire.DeploymentFailed, ""))

	if d.Snapshot() != nil || d.IsFailed() {
		t.Error("update for the previous id reached the new view")
	}
}
