// Package devwatch watches files during development and pushes reload
// notifications to connected clients through the hub.
package devwatch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lightforgemedia/go-realtime/pkg/wire"
)

const debounceTime = 100 * time.Millisecond

// Broadcaster is the piece of the hub the watcher needs.
type Broadcaster interface {
	Broadcast(env wire.Envelope) error
}

// Options configures which files trigger reload notifications.
type Options struct {
	// Paths lists files or directories to watch.
	Paths []string

	// Extensions limits which files are considered. Empty means all files.
	Extensions []string

	// IgnorePaths lists path fragments to skip.
	IgnorePaths []string
}

// Watcher publishes a reload notification when a watched file changes.
type Watcher struct {
	hub     Broadcaster
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	options Options
	done    chan struct{}
}

// New creates a watcher; Start begins watching.
func New(hub Broadcaster, logger *slog.Logger, options Options) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		hub:     hub,
		watcher: fsWatcher,
		logger:  logger,
		options: options,
		done:    make(chan struct{}),
	}, nil
}

// Start adds the configured paths and begins watching in the background.
func (w *Watcher) Start(ctx context.Context) error {
	for _, path := range w.options.Paths {
		if err := w.watcher.Add(path); err != nil {
			w.logger.Error("watch path not added", "path", path, "error", err)
		}
	}
	go w.watch(ctx)
	return nil
}

// Stop stops watching.
func (w *Watcher) Stop() {
	close(w.done)
	w.watcher.Close()
}

func (w *Watcher) watch(ctx context.Context) {
	// Debounce bursts of events for the same save.
	debounce := time.NewTimer(debounceTime)
	debounce.Stop()
	var lastEvent fsnotify.Event

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.shouldIgnore(event.Name) || !w.hasWatchedExtension(event.Name) {
				continue
			}
			lastEvent = event
			debounce.Reset(debounceTime)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		case <-debounce.C:
			w.publishReload(lastEvent)
		}
	}
}

func (w *Watcher) shouldIgnore(path string) bool {
	for _, ignore := range w.options.IgnorePaths {
		if strings.Contains(path, ignore) {
			return true
		}
	}
	return false
}

func (w *Watcher) hasWatchedExtension(path string) bool {
	if len(w.options.Extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, watched := range w.options.Extensions {
		if ext == watched {
			return true
		}
	}
	return false
}

func (w *Watcher) publishReload(event fsnotify.Event) {
	env, err := wire.NewEnvelope(wire.TypeNotification, wire.Notification{
		Type:    "reload",
		Title:   "Reload",
		Message: event.Name,
		Options: map[string]any{"operation": event.Op.String()},
	})
	if err != nil {
		w.logger.Error("reload notification not built", "error", err)
		return
	}
	if err := w.hub.Broadcast(env); err != nil {
		w.logger.Error("reload notification not published", "error", err)
		return
	}
	w.logger.Info("published reload notification", "path", event.Name)
}
