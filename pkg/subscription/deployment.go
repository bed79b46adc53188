package subscription

import (
	"sync"

	"github.com/lightforgemedia/go-realtime/pkg/client"
	"github.com/lightforgemedia/go-realtime/pkg/wire"
)

// Deployment tracks the latest update for a single deployment id.
type Deployment struct {
	src Source

	mu       sync.Mutex
	id       string
	snapshot *wire.DeploymentUpdate
	loading  bool
	remove   func()
}

// NewDeployment builds an adapter over the shared message stream.
func NewDeployment(src Source) *Deployment {
	return &Deployment{src: src}
}

// SetID switches the adapter to a new deployment id; "" clears the view.
func (d *Deployment) SetID(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id == d.id {
		return
	}
	if d.remove != nil {
		d.remove()
		d.remove = nil
	}
	d.id = id
	d.snapshot = nil
	d.loading = false
	if id == "" {
		return
	}
	d.loading = true
	d.remove = d.src.OnMessage(d.listener(id))
}

func (d *Deployment) listener(id string) client.MessageHandler {
	return func(_ *wire.Envelope, payload wire.Payload) {
		upd, ok := payload.(*wire.DeploymentUpdate)
		if !ok || upd.DeploymentID != id {
			return
		}
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.id != id {
			return
		}
		d.snapshot = upd
		d.loading = false
	}
}

// Close clears the view and unregisters the listener.
func (d *Deployment) Close() { d.SetID("") }

// ID returns the deployment id currently tracked, or "".
func (d *Deployment) ID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.id
}

// Snapshot returns the latest update received for the current id, or nil.
func (d *Deployment) Snapshot() *wire.DeploymentUpdate {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshot
}

// IsLoading reports whether an id is set but no update has arrived yet.
func (d *Deployment) IsLoading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading
}

func (d *Deployment) status() wire.DeploymentStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.snapshot == nil {
		return ""
	}
	return d.snapshot.Status
}

// IsCompleted reports whether the latest update is terminal-success.
func (d *Deployment) IsCompleted() bool { return d.status() == wire.DeploymentCompleted }

// IsFailed reports whether the latest update is terminal-failure.
func (d *Deployment) IsFailed() bool { return d.status() == wire.DeploymentFailed }

// URL returns the deployed application URL once the server reports one.
func (d *Deployment) URL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.snapshot == nil {
		return ""
	}
	return d.snapshot.URL
}

// Progress returns the latest progress, or the zero value while no update
// has arrived.
func (d *Deployment) Progress() wire.Progress {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.snapshot == nil {
		return wire.Progress{}
	}
	return d.snapshot.Progress
}
