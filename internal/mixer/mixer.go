// Package mixer sums streamers sample-wise into one output block.
package mixer

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep/v2"
)

// ErrMixerRunning is returned when inputs change after streaming has begun.
var ErrMixerRunning = errors.New("mixer: inputs are fixed once streaming starts")

// scratchFrames bounds the per-input pull size; larger requests are
// processed in chunks of this many frames.
const scratchFrames = 4096

// Mixer adds its inputs without extra gain. An input that returns fewer
// frames than requested is zero-padded; an input that reports it is done is
// skipped from then on. Stream never allocates and never ends.
type Mixer struct {
	mu      sync.Mutex
	inputs  []beep.Streamer
	drained []bool
	started atomic.Bool

	scratch [scratchFrames][2]float64
}

// New creates a mixer over inputs.
func New(inputs ...beep.Streamer) *Mixer {
	m := &Mixer{}
	for _, in := range inputs {
		m.inputs = append(m.inputs, in)
		m.drained = append(m.drained, false)
	}
	return m
}

// Add registers another input. It fails once Stream has been called.
func (m *Mixer) Add(s beep.Streamer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started.Load() {
		return ErrMixerRunning
	}
	m.inputs = append(m.inputs, s)
	m.drained = append(m.drained, false)
	return nil
}

// Remove unregisters an input, compared by identity. It fails once Stream
// has been called.
func (m *Mixer) Remove(s beep.Streamer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started.Load() {
		return ErrMixerRunning
	}
	for i, in := range m.inputs {
		if in == s {
			m.inputs = append(m.inputs[:i], m.inputs[i+1:]...)
			m.drained = append(m.drained[:i], m.drained[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of inputs.
func (m *Mixer) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

// Stream implements beep.Streamer. It must be called from a single goroutine.
func (m *Mixer) Stream(samples [][2]float64) (int, bool) {
	if !m.started.Load() {
		// Publishes the input list to the audio goroutine once; Add and
		// Remove refuse to touch it afterwards.
		m.mu.Lock()
		m.started.Store(true)
		m.mu.Unlock()
	}

	for off := 0; off < len(samples); off += scratchFrames {
		m.mix(samples[off:min(off+scratchFrames, len(samples))])
	}
	return len(samples), true
}

func (m *Mixer) mix(out [][2]float64) {
	clear(out)
	buf := m.scratch[:len(out)]
	for i, in := range m.inputs {
		if m.drained[i] {
			continue
		}
		n, ok := in.Stream(buf)
		for j := 0; j < n; j++ {
			out[j][0] += buf[j][0]
			out[j][1] += buf[j][1]
		}
		if !ok {
			m.drained[i] = true
		}
	}
}

// Err implements beep.Streamer.
func (m *Mixer) Err() error {
	return nil
}
