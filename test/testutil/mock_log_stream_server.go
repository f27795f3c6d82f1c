package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/opspanel/opspanel-cli/internal/infrastructure/streaming"
)

// MockLogStreamServer is a WebSocket endpoint speaking the backend's log
// stream protocol: it records subscribe frames and lets tests push
// log_update / log_error frames (or raw bytes) to the connected client.
type MockLogStreamServer struct {
	*httptest.Server

	mu         sync.Mutex
	conn       *websocket.Conn
	subscribed chan streaming.Frame
}

// NewMockLogStreamServer starts the server. Callers own Close.
func NewMockLogStreamServer() *MockLogStreamServer {
	s := &MockLogStreamServer{
		subscribed: make(chan streaming.Frame, 16),
	}
	upgrader := websocket.Upgrader{}

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()

		for {
			var f streaming.Frame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			if strings.HasPrefix(f.Type, "subscribe") {
				s.subscribed <- f
			}
		}
	}))
	return s
}

// URL returns the ws:// address of the endpoint.
func (s *MockLogStreamServer) URL() string {
	return "ws" + strings.TrimPrefix(s.Server.URL, "http")
}

// Subscribed delivers subscribe frames as the client sends them.
func (s *MockLogStreamServer) Subscribed() <-chan streaming.Frame {
	return s.subscribed
}

// Send pushes a frame to the connected client.
func (s *MockLogStreamServer) Send(f streaming.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(f)
}

// SendRaw pushes raw bytes, for malformed-frame tests.
func (s *MockLogStreamServer) SendRaw(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}
