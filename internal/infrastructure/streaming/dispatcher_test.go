package streaming

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeConn scripts the read side and records writes.
type fakeConn struct {
	incoming chan []byte
	written  chan Frame
	closed   chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		incoming: make(chan []byte, 16),
		written:  make(chan Frame, 16),
		closed:   make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data, ok := <-c.incoming:
		if !ok {
			return 0, nil, errors.New("connection closed")
		}
		return 1, data, nil
	case <-c.closed:
		return 0, nil, errors.New("connection closed")
	}
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.written <- v.(Frame)
	return nil
}

func (c *fakeConn) Close() error {
	close(c.closed)
	return nil
}

// collector records routed frames for assertions.
type collector struct {
	updates chan [2]string
	errors  chan [2]string
}

func newCollector() *collector {
	return &collector{
		updates: make(chan [2]string, 16),
		errors:  make(chan [2]string, 16),
	}
}

func (c *collector) HandleUpdate(topic, content string) { c.updates <- [2]string{topic, content} }
func (c *collector) HandleError(topic, message string)  { c.errors <- [2]string{topic, message} }

func push(conn *fakeConn, f Frame) {
	data, _ := json.Marshal(f)
	conn.incoming <- data
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel")
		panic("unreachable")
	}
}

func TestSubscriptionKind(t *testing.T) {
	tests := []struct {
		logType string
		want    string
	}{
		{"job", "subscribe_log"},
		{"", "subscribe_log"},
		{"consumer", "subscribe_consumer_log"},
		{"scheduler", "subscribe_scheduler_log"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SubscriptionKind(tt.logType))
	}
}

func TestDispatcher_SubscribeSendsFrame(t *testing.T) {
	conn := newFakeConn()
	d := NewDispatcher(zap.NewNop())
	d.Start(conn)

	require.NoError(t, d.Subscribe(context.Background(), "42", SubscriptionKind("job"), newCollector()))

	sent := recv(t, conn.written)
	assert.Equal(t, Frame{Type: "subscribe_log", Topic: "42"}, sent)
}

func TestDispatcher_RoutesByTopic(t *testing.T) {
	conn := newFakeConn()
	d := NewDispatcher(zap.NewNop())
	d.Start(conn)

	sub := newCollector()
	require.NoError(t, d.Subscribe(context.Background(), "42", "subscribe_log", sub))

	push(conn, Frame{Type: FrameLogUpdate, Topic: "42", Content: "hello"})
	got := recv(t, sub.updates)
	assert.Equal(t, [2]string{"42", "hello"}, got)

	// Non-matching topic is silently ignored.
	push(conn, Frame{Type: FrameLogUpdate, Topic: "99", Content: "other"})
	push(conn, Frame{Type: FrameLogUpdate, Topic: "42", Content: "world"})
	got = recv(t, sub.updates)
	assert.Equal(t, [2]string{"42", "world"}, got, "frame for topic 99 must not reach the subscriber")
}

func TestDispatcher_RoutesErrors(t *testing.T) {
	conn := newFakeConn()
	d := NewDispatcher(zap.NewNop())
	d.Start(conn)

	sub := newCollector()
	require.NoError(t, d.Subscribe(context.Background(), "42", "subscribe_log", sub))

	push(conn, Frame{Type: FrameLogError, Topic: "42", Error: "tail failed"})
	got := recv(t, sub.errors)
	assert.Equal(t, [2]string{"42", "tail failed"}, got)
}

func TestDispatcher_MalformedFrameSkipped(t *testing.T) {
	conn := newFakeConn()
	d := NewDispatcher(zap.NewNop())
	d.Start(conn)

	sub := newCollector()
	require.NoError(t, d.Subscribe(context.Background(), "42", "subscribe_log", sub))

	conn.incoming <- []byte("{not json")
	push(conn, Frame{Type: FrameLogUpdate, Topic: "42", Content: "still alive"})

	got := recv(t, sub.updates)
	assert.Equal(t, [2]string{"42", "still alive"}, got, "read loop survives malformed frames")
}

func TestDispatcher_MultipleSubscribers(t *testing.T) {
	conn := newFakeConn()
	d := NewDispatcher(zap.NewNop())
	d.Start(conn)

	subA, subB := newCollector(), newCollector()
	require.NoError(t, d.Subscribe(context.Background(), "a", "subscribe_log", subA))
	require.NoError(t, d.Subscribe(context.Background(), "b", "subscribe_consumer_log", subB))

	push(conn, Frame{Type: FrameLogUpdate, Topic: "b", Content: "for b"})
	push(conn, Frame{Type: FrameLogUpdate, Topic: "a", Content: "for a"})

	assert.Equal(t, [2]string{"b", "for b"}, recv(t, subB.updates))
	assert.Equal(t, [2]string{"a", "for a"}, recv(t, subA.updates))
}

func TestDispatcher_Unsubscribe(t *testing.T) {
	conn := newFakeConn()
	d := NewDispatcher(zap.NewNop())
	d.Start(conn)

	sub := newCollector()
	require.NoError(t, d.Subscribe(context.Background(), "42", "subscribe_log", sub))
	d.Unsubscribe("42")

	push(conn, Frame{Type: FrameLogUpdate, Topic: "42", Content: "late"})

	select {
	case got := <-sub.updates:
		t.Fatalf("expected no delivery after unsubscribe, got %v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDispatcher_SubscribeWaitsForReady(t *testing.T) {
	d := NewDispatcher(zap.NewNop())
	conn := newFakeConn()

	done := make(chan error, 1)
	go func() {
		done <- d.Subscribe(context.Background(), "42", "subscribe_log", newCollector())
	}()

	select {
	case err := <-done:
		t.Fatalf("subscribe should block until the connection opens, returned %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	d.Start(conn)
	require.NoError(t, recv(t, done))
	assert.Equal(t, Frame{Type: "subscribe_log", Topic: "42"}, recv(t, conn.written))
}

func TestDispatcher_SubscribeCancelledBeforeOpen(t *testing.T) {
	d := NewDispatcher(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Subscribe(ctx, "42", "subscribe_log", newCollector())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLogStream_SlowViewerDoesNotBlockDispatch(t *testing.T) {
	conn := newFakeConn()
	d := NewDispatcher(zap.NewNop())
	d.Start(conn)

	s := NewLogStream(d)
	require.NoError(t, s.View(context.Background(), "42", "job"))
	recv(t, conn.written)

	// Nobody drains s.Events(); every delivery past the buffer must drop
	// instead of stalling the read loop.
	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(s.events)+16; i++ {
			streamHandler{s}.HandleUpdate("42", "line")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("delivery blocked once the viewer stopped draining")
	}
	assert.Len(t, s.events, cap(s.events))
}

func TestDispatcher_ErrReportsConnectionLoss(t *testing.T) {
	conn := newFakeConn()
	d := NewDispatcher(zap.NewNop())
	d.Start(conn)

	require.NoError(t, d.Close())
	err := recv(t, d.Err())
	require.Error(t, err)
}
