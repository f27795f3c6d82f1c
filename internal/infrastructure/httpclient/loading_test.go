package httpclient

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

type recordingSink struct {
	mu    sync.Mutex
	shows int
	hides int
	shown bool
}

func (s *recordingSink) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shows++
	s.shown = true
}

func (s *recordingSink) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hides++
	s.shown = false
}

func (s *recordingSink) visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shown
}

func TestLoadingCounter_VisibleWhileInFlight(t *testing.T) {
	sink := &recordingSink{}
	counter := NewLoadingCounter(sink)

	const n = 5
	for i := 0; i < n; i++ {
		counter.Acquire()
	}
	assert.Equal(t, n, counter.Count())
	assert.True(t, sink.visible(), "overlay visible while requests are in flight")
	assert.Equal(t, 1, sink.shows, "Show fires once per busy period, not per request")

	for i := 0; i < n; i++ {
		counter.Release()
	}
	assert.Equal(t, 0, counter.Count())
	assert.False(t, sink.visible())
	assert.Equal(t, 1, sink.hides)
}

func TestLoadingCounter_ClampsAtZero(t *testing.T) {
	sink := &recordingSink{}
	counter := NewLoadingCounter(sink)

	counter.Release()
	counter.Release()
	assert.Equal(t, 0, counter.Count())

	counter.Acquire()
	assert.Equal(t, 1, counter.Count())
	assert.True(t, sink.visible(), "clamped releases must not eat a later Show")
}

func TestLoadingCounter_ConcurrentAcquireRelease(t *testing.T) {
	counter := NewLoadingCounter(&recordingSink{})

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			counter.Acquire()
			counter.Release()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, counter.Count())
}

func TestLoadingCounter_InvariantProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sink := &recordingSink{}
		counter := NewLoadingCounter(sink)
		inFlight := 0

		ops := rapid.SliceOf(rapid.Bool()).Draw(t, "ops")
		for _, acquire := range ops {
			if acquire {
				counter.Acquire()
				inFlight++
			} else {
				counter.Release()
				if inFlight > 0 {
					inFlight--
				}
			}
			assert.Equal(t, inFlight, counter.Count())
			assert.Equal(t, inFlight > 0, sink.visible(), "overlay visible iff count > 0")
		}
	})
}
