// Package subscription narrows the generic message stream to updates for one
// identified resource at a time.
//
// Adapters are live-tail views: an update broadcast before the adapter
// registered its listener is missed and never recovered. There is no replay
// or catch-up from resource-creation time.
package subscription

import (
	"github.com/lightforgemedia/go-realtime/pkg/client"
)

// Source is the slice of the connection surface an adapter needs. A
// *client.Client satisfies it.
type Source interface {
	OnMessage(fn client.MessageHandler) (remove func())
}
