package httpclient

import (
	"sync"

	"github.com/opspanel/opspanel-cli/internal/core/ports"
)

// LoadingCounter reference-counts in-flight requests and drives a busy
// indicator: the sink shows while the count is above zero. Release clamps at
// zero so a stray double-release cannot wedge the indicator.
type LoadingCounter struct {
	mu    sync.Mutex
	count int
	sink  ports.BusySink
}

// NewLoadingCounter returns a counter bound to sink. A nil sink is allowed.
func NewLoadingCounter(sink ports.BusySink) *LoadingCounter {
	return &LoadingCounter{sink: sink}
}

// Acquire increments the in-flight count.
func (l *LoadingCounter) Acquire() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.count++
	if l.count == 1 && l.sink != nil {
		l.sink.Show()
	}
}

// Release decrements the in-flight count, clamping at zero.
func (l *LoadingCounter) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.count == 0 {
		return
	}
	l.count--
	if l.count == 0 && l.sink != nil {
		l.sink.Hide()
	}
}

// Count returns the current in-flight count.
func (l *LoadingCounter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}
