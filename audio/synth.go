package audio

import (
	"log"
	"sync"
)

// MaxAmplitude is the peak sample value the synthesizer emits for the
// one-bit PCM square wave (leaves headroom below the int16 ceiling).
const MaxAmplitude int16 = 16384

const nanosPerSecond = 1_000_000_000

// Synth drains a Ring of CPU-time edge timestamps and reconstructs a
// square wave at a fixed sample rate, per spec §4.6's algorithm, writing
// each completed buffer to a Sink. It runs on its own goroutine, started
// by Start and joined by Stop — the CORE's one cross-thread boundary.
type Synth struct {
	ring          *Ring
	sink          Sink
	cpuFreqHz     uint64
	sampleRate    uint64
	bufferSamples int

	lastValue    int16
	lastSampleTs uint64

	stopCh chan struct{}
	doneCh chan struct{}
	mu     sync.Mutex
	active bool
}

// NewSynth creates a synthesizer reading edges from ring and writing
// bufferSamples-sample buffers to sink at sampleRate, given the CPU's
// clock frequency in Hz (for converting cycles to nanoseconds).
func NewSynth(ring *Ring, sink Sink, cpuFreqHz, sampleRate uint64, bufferSamples int) *Synth {
	return &Synth{
		ring:          ring,
		sink:          sink,
		cpuFreqHz:     cpuFreqHz,
		sampleRate:    sampleRate,
		bufferSamples: bufferSamples,
		lastValue:     -MaxAmplitude,
	}
}

// Start launches the emission goroutine. lastSampleTs is the CPU time
// corresponding to the start of the first buffer (normally 0, at reset).
func (s *Synth) Start(initialCPUTime uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.lastSampleTs = initialCPUTime
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.active = true

	go s.run(s.stopCh, s.doneCh)
}

// Stop signals the emission thread to exit after finishing its current
// buffer, and blocks until it has, per spec §5's cancellation contract.
func (s *Synth) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.active = false
	s.mu.Unlock()

	close(stopCh)
	<-doneCh
}

func (s *Synth) run(stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	buf := make([]int16, s.bufferSamples)
	for {
		s.fillBuffer(buf)
		if err := s.sink.Write(buf); err != nil {
			log.Printf("[audio] sink write failed: %v", err)
			return
		}

		select {
		case <-stopCh:
			return
		default:
		}
	}
}

// bufferDurationCycles converts one buffer's worth of sample-rate time
// into CPU cycles.
func (s *Synth) bufferDurationCycles() uint64 {
	return s.nanosToCycles(uint64(s.bufferSamples) * nanosPerSecond / s.sampleRate)
}

func (s *Synth) cyclesToNanos(cycles uint64) uint64 {
	if s.cpuFreqHz == 0 {
		return 0
	}
	return cycles * nanosPerSecond / s.cpuFreqHz
}

func (s *Synth) nanosToCycles(nanos uint64) uint64 {
	return nanos * s.cpuFreqHz / nanosPerSecond
}

func (s *Synth) samplesForCycles(cycles uint64) int {
	nanos := s.cyclesToNanos(cycles)
	return int(nanos * s.sampleRate / nanosPerSecond)
}

// fillBuffer implements spec §4.6: drain edges up to lastSampleTs plus one
// buffer duration, emitting at the held level between edges and flipping
// on each, then fill the remainder at the final level and advance
// lastSampleTs by exactly one buffer's worth of CPU time.
func (s *Synth) fillBuffer(buf []int16) {
	bound := s.lastSampleTs + s.bufferDurationCycles()
	prev := s.lastSampleTs
	filled := 0

	for filled < len(buf) {
		ts, ok := s.ring.Peek()
		if !ok || ts > bound {
			break
		}
		s.ring.Pop()

		n := s.samplesForCycles(ts - prev)
		filled = s.emit(buf, filled, n)
		prev = ts
		s.lastValue = -s.lastValue
	}

	s.emit(buf, filled, len(buf)-filled)
	s.lastSampleTs += s.bufferDurationCycles()
}

func (s *Synth) emit(buf []int16, from, n int) int {
	if n < 0 {
		n = 0
	}
	to := from + n
	if to > len(buf) {
		to = len(buf)
	}
	for i := from; i < to; i++ {
		buf[i] = s.lastValue
	}
	return to
}
