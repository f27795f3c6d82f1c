package streaming

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/opspanel/opspanel-cli/internal/core/ports"
)

// Frame kinds on the log stream socket.
const (
	FrameLogUpdate = "log_update"
	FrameLogError  = "log_error"
)

// Frame is the wire shape of every message on the log stream socket, in both
// directions. Outbound frames carry only Type and Topic.
type Frame struct {
	Type    string `json:"type"`
	Topic   string `json:"topic"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SubscriptionKind derives the subscribe message type from a log type. Job
// logs use the bare kind; anything else is namespaced.
func SubscriptionKind(logType string) string {
	if logType == "" || logType == "job" {
		return "subscribe_log"
	}
	return "subscribe_" + logType + "_log"
}

// Conn is the slice of *websocket.Conn the dispatcher needs. Ownership of the
// connection, including any reconnect strategy, stays with the caller.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v interface{}) error
	Close() error
}

// Dispatcher multiplexes one shared socket across topic subscribers: it owns
// the read loop, routes incoming frames by topic, and serializes outbound
// subscribe frames. Frames for topics nobody registered are dropped silently;
// malformed frames are logged and skipped, never fatal.
type Dispatcher struct {
	logger *zap.Logger

	mu       sync.Mutex
	conn     Conn
	handlers map[string]ports.StreamHandler

	ready chan struct{}
	errCh chan error
}

// NewDispatcher creates a dispatcher with no connection attached yet.
// Subscribe may be called immediately; frames are sent once Start runs.
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		logger:   logger,
		handlers: make(map[string]ports.StreamHandler),
		ready:    make(chan struct{}),
		errCh:    make(chan error, 1),
	}
}

// Dial connects to the log stream endpoint and starts the dispatcher.
func Dial(ctx context.Context, url string, logger *zap.Logger) (*Dispatcher, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial log stream %s: %w", url, err)
	}
	d := NewDispatcher(logger)
	d.Start(conn)
	return d, nil
}

// Start attaches an open connection and launches the read loop. The loop's
// exit error is delivered on Err.
func (d *Dispatcher) Start(conn Conn) {
	d.mu.Lock()
	d.conn = conn
	d.mu.Unlock()
	close(d.ready)
	go func() {
		d.errCh <- d.readLoop(conn)
	}()
}

// Ready is closed once a connection is attached. Replaces polling the socket
// ready state: subscribers block on this channel instead.
func (d *Dispatcher) Ready() <-chan struct{} {
	return d.ready
}

// Err delivers the read loop's exit error once the connection dies.
func (d *Dispatcher) Err() <-chan error {
	return d.errCh
}

// Subscribe registers handler for topic and transmits the subscribe frame of
// the given kind. It waits for the connection to open first; ctx bounds that
// wait. Re-subscribing a topic replaces its handler.
func (d *Dispatcher) Subscribe(ctx context.Context, topic, kind string, handler ports.StreamHandler) error {
	d.mu.Lock()
	d.handlers[topic] = handler
	d.mu.Unlock()

	select {
	case <-ctx.Done():
		d.Unsubscribe(topic)
		return ctx.Err()
	case <-d.ready:
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.conn.WriteJSON(Frame{Type: kind, Topic: topic}); err != nil {
		delete(d.handlers, topic)
		return fmt.Errorf("send subscribe for topic %s: %w", topic, err)
	}
	d.logger.Debug("subscribed to log stream",
		zap.String("topic", topic),
		zap.String("kind", kind),
	)
	return nil
}

// Unsubscribe drops the topic handler. The protocol has no unsubscribe frame,
// so nothing goes out on the wire; the server side stops on disconnect.
func (d *Dispatcher) Unsubscribe(topic string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.handlers, topic)
}

// Close tears down the connection, ending the read loop.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	conn := d.conn
	d.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (d *Dispatcher) readLoop(conn Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		d.dispatch(data)
	}
}

func (d *Dispatcher) dispatch(data []byte) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		d.logger.Warn("malformed log stream frame", zap.Error(err))
		return
	}

	d.mu.Lock()
	handler := d.handlers[f.Topic]
	d.mu.Unlock()
	if handler == nil {
		return
	}

	switch f.Type {
	case FrameLogUpdate:
		handler.HandleUpdate(f.Topic, f.Content)
	case FrameLogError:
		handler.HandleError(f.Topic, f.Error)
	default:
		d.logger.Debug("unhandled log stream frame", zap.String("type", f.Type))
	}
}
