// Package testutil provides a mock WebSocket server for exercising the
// realtime client in tests.
package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/lightforgemedia/go-realtime/pkg/wire"
)

// MockServer is a single-connection WebSocket server for client tests. It
// records how many upgrade attempts it has seen and can be told to refuse
// them, which is how reconnect behavior is exercised.
type MockServer struct {
	T      *testing.T
	Server *httptest.Server
	WsURL  string

	Conn   *websocket.Conn
	ConnMu sync.Mutex

	Handler    func(conn *websocket.Conn, ms *MockServer)
	ActiveConn context.CancelFunc

	accepts atomic.Int32
	refuse  atomic.Bool
}

// NewMockServer starts the server. handlerFunc runs once per accepted
// connection; nil means the connection is held open until closed.
func NewMockServer(t *testing.T, handlerFunc func(conn *websocket.Conn, ms *MockServer)) *MockServer {
	t.Helper()
	ms := &MockServer{T: t, Handler: handlerFunc}

	ms.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ms.accepts.Add(1)
		if ms.refuse.Load() {
			http.Error(w, "refusing connections", http.StatusServiceUnavailable)
			return
		}

		connCtx, connCancel := context.WithCancel(context.Background())
		ms.ActiveConn = connCancel

		sock, err := websocket.Accept(w, r, nil)
		if err != nil {
			ms.T.Logf("MockServer: accept error: %v", err)
			connCancel()
			return
		}

		ms.ConnMu.Lock()
		ms.Conn = sock
		ms.ConnMu.Unlock()

		go func() {
			defer connCancel()
			if ms.Handler != nil {
				ms.Handler(sock, ms)
			}
		}()

		<-connCtx.Done()
	}))

	ms.WsURL = "ws" + ms.Server.URL[4:]

	t.Cleanup(func() { ms.Close() })
	return ms
}

// Send writes an envelope to the connected client.
func (ms *MockServer) Send(env wire.Envelope) error {
	ms.ConnMu.Lock()
	defer ms.ConnMu.Unlock()
	if ms.Conn == nil {
		return nil
	}
	return wsjson.Write(context.Background(), ms.Conn, env)
}

// SendRaw writes raw bytes to the connected client, for malformed-frame
// tests.
func (ms *MockServer) SendRaw(frame []byte) error {
	ms.ConnMu.Lock()
	defer ms.ConnMu.Unlock()
	if ms.Conn == nil {
		return nil
	}
	return ms.Conn.Write(context.Background(), websocket.MessageText, frame)
}

// Accepts reports how many upgrade attempts the server has seen.
func (ms *MockServer) Accepts() int {
	return int(ms.accepts.Load())
}

// Refuse makes subsequent upgrade attempts fail before the handshake
// completes.
func (ms *MockServer) Refuse(refuse bool) {
	ms.refuse.Store(refuse)
}

// CloseCurrentConnection closes the active WebSocket connection without
// stopping the server, simulating an unexpected close on the client side.
func (ms *MockServer) CloseCurrentConnection() {
	ms.ConnMu.Lock()
	defer ms.ConnMu.Unlock()

	if ms.Conn != nil {
		ms.Conn.Close(websocket.StatusGoingAway, "test closing connection")
		ms.Conn = nil
	}
	if ms.ActiveConn != nil {
		ms.ActiveConn()
		ms.ActiveConn = nil
	}
}

// Close shuts the server down.
func (ms *MockServer) Close() {
	ms.CloseCurrentConnection()
	if ms.Server != nil {
		ms.Server.Close()
	}
}
