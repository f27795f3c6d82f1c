package streaming

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/opspanel/opspanel-cli/internal/core/ports"
)

// Event is one rendered piece of log output for a viewer. Stream errors
// arrive pre-formatted as bracketed annotations.
type Event struct {
	Topic   string
	Content string
	IsError bool
}

// LogStream tracks one viewer's subscription: a single topic at a time, with
// incoming text delivered on a channel. Viewing a new topic implicitly
// replaces the old one; frames for the abandoned topic stop being routed.
type LogStream struct {
	dispatcher *Dispatcher
	events     chan Event

	mu    sync.Mutex
	topic string
}

// NewLogStream binds a viewer stream to the shared dispatcher.
func NewLogStream(d *Dispatcher) *LogStream {
	return &LogStream{
		dispatcher: d,
		events:     make(chan Event, 256),
	}
}

// View switches the stream to topic, subscribing with the kind derived from
// logType. Any previous topic is dropped first.
func (s *LogStream) View(ctx context.Context, topic, logType string) error {
	s.mu.Lock()
	if s.topic != "" {
		s.dispatcher.Unsubscribe(s.topic)
	}
	s.topic = topic
	s.mu.Unlock()

	return s.dispatcher.Subscribe(ctx, topic, SubscriptionKind(logType), streamHandler{s})
}

// Topic returns the currently viewed topic, empty when closed.
func (s *LogStream) Topic() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topic
}

// Events delivers appended log text in arrival order.
func (s *LogStream) Events() <-chan Event {
	return s.events
}

// Close drops the subscription. The channel stays open; the owner of the
// dispatcher decides when the socket dies.
func (s *LogStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.topic != "" {
		s.dispatcher.Unsubscribe(s.topic)
		s.topic = ""
	}
}

type streamHandler struct {
	s *LogStream
}

func (h streamHandler) HandleUpdate(topic, content string) {
	h.s.deliver(Event{Topic: topic, Content: content})
}

func (h streamHandler) HandleError(topic, message string) {
	h.s.deliver(Event{
		Topic:   topic,
		Content: fmt.Sprintf("[stream error: %s]", message),
		IsError: true,
	})
}

func (s *LogStream) deliver(ev Event) {
	s.mu.Lock()
	current := s.topic
	s.mu.Unlock()
	if ev.Topic != current {
		return
	}
	// Never block the dispatcher's read loop on a viewer that stopped
	// draining; the socket is shared.
	select {
	case s.events <- ev:
	default:
		s.dispatcher.logger.Warn("viewer not draining log events, dropping",
			zap.String("topic", ev.Topic))
	}
}

var _ ports.StreamHandler = streamHandler{}
