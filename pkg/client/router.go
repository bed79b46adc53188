package client

import (
	"encoding/json"
	"log/slog"
	"slices"
	"sync"

	"github.com/lightforgemedia/go-realtime/pkg/wire"
)

// MessageHandler receives every non-control inbound envelope together with
// its decoded payload.
type MessageHandler func(env *wire.Envelope, payload wire.Payload)

// EventHandler observes a connect or disconnect transition.
type EventHandler func()

// ErrorHandler observes a transport error.
type ErrorHandler func(err error)

type controlIntercept interface {
	HandlePing()
	HandlePong()
}

type messageEntry struct{ fn MessageHandler }
type eventEntry struct{ fn EventHandler }
type errorEntry struct{ fn ErrorHandler }

// Router parses inbound frames, intercepts ping/pong control messages, and
// fans everything else out to registered listeners in registration order.
//
// Registration returns a removal handle with stable identity; registering the
// same callback twice creates two independent entries, and calling a removal
// handle more than once is a no-op.
type Router struct {
	logger  *slog.Logger
	control controlIntercept

	mu          sync.Mutex
	messages    []*messageEntry
	connects    []*eventEntry
	disconnects []*eventEntry
	errors      []*errorEntry
}

func newRouter(logger *slog.Logger) *Router {
	return &Router{logger: logger}
}

// OnMessage registers a listener for all non-control envelopes. Listeners are
// not filtered by type here; narrowing to a type or resource id is the
// subscriber's job.
func (r *Router) OnMessage(fn MessageHandler) func() {
	e := &messageEntry{fn: fn}
	r.mu.Lock()
	r.messages = append(r.messages, e)
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, got := range r.messages {
			if got == e {
				r.messages = slices.Delete(slices.Clone(r.messages), i, i+1)
				return
			}
		}
	}
}

// OnConnect registers a listener fired once per successful open.
func (r *Router) OnConnect(fn EventHandler) func() {
	e := &eventEntry{fn: fn}
	r.mu.Lock()
	r.connects = append(r.connects, e)
	r.mu.Unlock()
	return func() { r.removeEvent(&r.connects, e) }
}

// OnDisconnect registers a listener fired once per socket close.
func (r *Router) OnDisconnect(fn EventHandler) func() {
	e := &eventEntry{fn: fn}
	r.mu.Lock()
	r.disconnects = append(r.disconnects, e)
	r.mu.Unlock()
	return func() { r.removeEvent(&r.disconnects, e) }
}

// OnError registers a listener for transport errors.
func (r *Router) OnError(fn ErrorHandler) func() {
	e := &errorEntry{fn: fn}
	r.mu.Lock()
	r.errors = append(r.errors, e)
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, got := range r.errors {
			if got == e {
				r.errors = slices.Delete(slices.Clone(r.errors), i, i+1)
				return
			}
		}
	}
}

func (r *Router) removeEvent(set *[]*eventEntry, e *eventEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, got := range *set {
		if got == e {
			*set = slices.Delete(slices.Clone(*set), i, i+1)
			return
		}
	}
}

// dispatch handles one inbound frame. Malformed frames are logged and
// dropped; they never reach listeners. ping/pong are intercepted and never
// broadcast.
func (r *Router) dispatch(frame []byte) {
	var env wire.Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		r.logger.Warn("dropping malformed frame", "error", err)
		return
	}

	payload, err := env.DecodePayload()
	if err != nil {
		r.logger.Warn("dropping undecodable payload", "type", env.Type, "error", err)
		return
	}

	switch payload.(type) {
	case wire.Ping:
		r.control.HandlePing()
		return
	case wire.Pong:
		r.control.HandlePong()
		return
	}

	r.mu.Lock()
	listeners := slices.Clone(r.messages)
	r.mu.Unlock()

	for _, e := range listeners {
		r.invoke(e.fn, &env, payload)
	}
}

// invoke runs one listener in its own failure boundary so a panicking
// listener cannot suppress delivery to the others.
func (r *Router) invoke(fn MessageHandler, env *wire.Envelope, payload wire.Payload) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("message listener panicked", "type", env.Type, "panic", rec)
		}
	}()
	fn(env, payload)
}

func (r *Router) emitConnect() {
	r.mu.Lock()
	listeners := slices.Clone(r.connects)
	r.mu.Unlock()
	for _, e := range listeners {
		r.invokeEvent(e.fn)
	}
}

func (r *Router) emitDisconnect() {
	r.mu.Lock()
	listeners := slices.Clone(r.disconnects)
	r.mu.Unlock()
	for _, e := range listeners {
		r.invokeEvent(e.fn)
	}
}

func (r *Router) emitError(err error) {
	r.mu.Lock()
	listeners := slices.Clone(r.errors)
	r.mu.Unlock()
	for _, e := range listeners {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Error("error listener panicked", "panic", rec)
				}
			}()
			e.fn(err)
		}()
	}
}

func (r *Router) invokeEvent(fn EventHandler) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("event listener panicked", "panic", rec)
		}
	}()
	fn()
}
