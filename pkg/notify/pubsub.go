package notify

import (
	"github.com/cskr/pubsub"

	"github.com/lightforgemedia/go-realtime/pkg/wire"
)

// TopicAll receives every notification regardless of type.
const TopicAll = "*"

const defaultQueueLength = 16

// PubSubSink is an in-process Sink that fans notifications out to channel
// subscribers, keyed by notification type. Useful when the application wants
// to consume notifications from its own goroutines rather than supply a
// callback sink.
type PubSubSink struct {
	bus *pubsub.PubSub
}

// NewPubSubSink builds a sink whose subscriber channels buffer queueLength
// notifications each.
func NewPubSubSink(queueLength int) *PubSubSink {
	if queueLength <= 0 {
		queueLength = defaultQueueLength
	}
	return &PubSubSink{bus: pubsub.New(queueLength)}
}

// Notify publishes the notification to its type topic and to TopicAll.
// Non-blocking: subscribers with full channels miss the notification.
func (s *PubSubSink) Notify(n wire.Notification) {
	s.bus.TryPub(n, n.Type, TopicAll)
}

// Subscribe returns a channel of wire.Notification values for the given
// types; with no types it subscribes to everything.
func (s *PubSubSink) Subscribe(types ...string) chan interface{} {
	if len(types) == 0 {
		types = []string{TopicAll}
	}
	return s.bus.Sub(types...)
}

// Unsubscribe detaches a channel obtained from Subscribe.
func (s *PubSubSink) Unsubscribe(ch chan interface{}, types ...string) {
	if len(types) == 0 {
		types = []string{TopicAll}
	}
	s.bus.Unsub(ch, types...)
}

// Close shuts the bus down and closes all subscriber channels.
func (s *PubSubSink) Close() {
	s.bus.Shutdown()
}
