package subscription

import (
	"sync"

	"github.com/lightforgemedia/go-realtime/pkg/client"
	"github.com/lightforgemedia/go-realtime/pkg/wire"
)

// Generation tracks the latest update for a single generation id. The view
// resets whenever the id changes; state never carries over from a previous
// id.
type Generation struct {
	src Source

	mu       sync.Mutex
	id       string
	snapshot *wire.GenerationUpdate
	loading  bool
	remove   func()
}

// NewGeneration builds an adapter over the shared message stream. It tracks
// nothing until SetID is called with a non-empty id.
func NewGeneration(src Source) *Generation {
	return &Generation{src: src}
}

// SetID switches the adapter to a new generation id. The previous listener
// is unregistered and the snapshot cleared. An empty id just clears the
// view.
func (g *Generation) SetID(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id == g.id {
		return
	}
	if g.remove != nil {
		g.remove()
		g.remove = nil
	}
	g.id = id
	g.snapshot = nil
	g.loading = false
	if id == "" {
		return
	}
	g.loading = true
	g.remove = g.src.OnMessage(g.listener(id))
}

// listener accepts only generation updates for the requested id. The id
// check against the adapter's current id guards against a listener that was
// already snapshotted for dispatch when the id switched.
func (g *Generation) listener(id string) client.MessageHandler {
	return func(_ *wire.Envelope, payload wire.Payload) {
		upd, ok := payload.(*wire.GenerationUpdate)
		if !ok || upd.GenerationID != id {
			return
		}
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.id != id {
			return
		}
		g.snapshot = upd
		g.loading = false
	}
}

// Close clears the view and unregisters the listener.
func (g *Generation) Close() { g.SetID("") }

// ID returns the generation id currently tracked, or "".
func (g *Generation) ID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.id
}

// Snapshot returns the latest update received for the current id, or nil.
func (g *Generation) Snapshot() *wire.GenerationUpdate {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot
}

// IsLoading reports whether an id is set but no update has arrived yet.
func (g *Generation) IsLoading() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loading
}

func (g *Generation) status() wire.GenerationStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.snapshot == nil {
		return ""
	}
	return g.snapshot.Status
}

// IsCompleted reports whether the latest update is terminal-success.
func (g *Generation) IsCompleted() bool { return g.status() == wire.GenerationCompleted }

// IsFailed reports whether the latest update is terminal-failure.
func (g *Generation) IsFailed() bool { return g.status() == wire.GenerationFailed }

// IsCancelled reports whether the latest update is terminal-cancelled.
func (g *Generation) IsCancelled() bool { return g.status() == wire.GenerationCancelled }

// Progress returns the latest progress, or the zero value while no update
// has arrived.
func (g *Generation) Progress() wire.Progress {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.snapshot == nil {
		return wire.Progress{}
	}
	return g.snapshot.Progress
}
