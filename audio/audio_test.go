package audio

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingPushPopFIFO(t *testing.T) {
	r := NewRing(4)
	require.True(t, r.Push(10))
	require.True(t, r.Push(20))

	v, ok := r.Pop()
	require.True(t, ok)
	assert.Equal(t, uint64(10), v)

	v, ok = r.Pop()
	require.True(t, ok)
	assert.Equal(t, uint64(20), v)

	_, ok = r.Pop()
	assert.False(t, ok, "expected underflow on an empty ring")
}

func TestRingOverflowDropsNewest(t *testing.T) {
	r := NewRing(2)
	require.True(t, r.Push(1))
	require.True(t, r.Push(2))
	assert.False(t, r.Push(3), "expected overflow to be rejected")
	assert.Equal(t, 2, r.Len())
}

func TestRingPeekDoesNotConsume(t *testing.T) {
	r := NewRing(2)
	r.Push(42)

	v, ok := r.Peek()
	require.True(t, ok)
	assert.Equal(t, uint64(42), v)
	assert.Equal(t, 1, r.Len(), "Peek must not remove the entry")
}

type captureSink struct {
	mu      sync.Mutex
	buffers int
}

func (s *captureSink) Write(samples []int16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffers++
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffers
}

func TestSynthStartStopRunsAndJoins(t *testing.T) {
	sink := &captureSink{}
	synth := NewSynth(NewRing(16), sink, 1_000_000, 1000, 10)

	synth.Start(0)
	synth.Stop()

	assert.GreaterOrEqual(t, sink.count(), 1, "expected at least one buffer written before Stop joined")
}

func TestSynthEmitsFlatBufferWithNoEdges(t *testing.T) {
	ring := NewRing(16)
	synth := NewSynth(ring, nil, 1_000_000, 1000, 100)

	buf := make([]int16, 100)
	synth.fillBuffer(buf)

	for _, s := range buf {
		assert.Equal(t, synth.lastValue, s)
	}
}

func TestSynthFlipsOnEdge(t *testing.T) {
	ring := NewRing(16)
	// CPU runs at 1,000,000 Hz, sample rate 1000 Hz: one buffer of 100
	// samples spans 100,000 cycles. Put one edge at the buffer midpoint.
	ring.Push(50_000)
	synth := NewSynth(ring, nil, 1_000_000, 1000, 100)

	initial := synth.lastValue
	buf := make([]int16, 100)
	synth.fillBuffer(buf)

	assert.Equal(t, initial, buf[0])
	assert.Equal(t, -initial, buf[len(buf)-1])
}

func TestCapacityForScalesWithSampleRateAndFrequency(t *testing.T) {
	cap := CapacityFor(1024, 3_000_000, 22050, 2)
	assert.Greater(t, cap, 0)
}
