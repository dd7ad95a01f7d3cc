// Package reverb is a Freeverb-style stereo room reverb written as a
// beep.Streamer stage. Parameters are published atomically so the control
// side can change them while the audio goroutine streams.
package reverb

import (
	"sync/atomic"

	"github.com/gopxl/beep/v2"
)

// Params are the reverb controls, each in [0, 1].
type Params struct {
	RoomSize float64 `json:"room_size"`
	Damping  float64 `json:"damping"`
	WetLevel float64 `json:"wet_level"`
	DryLevel float64 `json:"dry_level"`
}

// DefaultParams is a fully dry reverb: input passes through untouched.
func DefaultParams() Params {
	return Params{RoomSize: 0.5, Damping: 0.5, WetLevel: 0, DryLevel: 1}
}

// Clamped returns p with every field clamped to [0, 1].
func (p Params) Clamped() Params {
	return Params{
		RoomSize: clamp01(p.RoomSize),
		Damping:  clamp01(p.Damping),
		WetLevel: clamp01(p.WetLevel),
		DryLevel: clamp01(p.DryLevel),
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || v != v:
		return 0
	case v > 1:
		return 1
	}
	return v
}

const (
	fixedGain    = 0.015
	scaleWet     = 3.0
	scaleDamp    = 0.4
	scaleRoom    = 0.28
	offsetRoom   = 0.7
	stereoSpread = 23
	tuningRate   = 44100
)

var (
	combTunings    = [...]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
	allpassTunings = [...]int{556, 441, 341, 225}
)

// Reverb applies room reverb to the frames pulled from its source.
type Reverb struct {
	src    beep.Streamer
	params atomic.Pointer[Params]

	applied  *Params
	dry, wet float64

	combs     [2][len(combTunings)]comb
	allpasses [2][len(allpassTunings)]allpass
}

// New wraps src. sampleRate scales the delay lines; all buffers are
// allocated here and never again.
func New(src beep.Streamer, sampleRate int) *Reverb {
	r := &Reverb{src: src}
	for ch := 0; ch < 2; ch++ {
		spread := ch * stereoSpread
		for i, n := range combTunings {
			r.combs[ch][i].buf = make([]float64, scaled(n+spread, sampleRate))
		}
		for i, n := range allpassTunings {
			r.allpasses[ch][i].buf = make([]float64, scaled(n+spread, sampleRate))
		}
	}
	r.SetParams(DefaultParams())
	return r
}

func scaled(n, sampleRate int) int {
	return max(1, n*sampleRate/tuningRate)
}

// SetParams publishes new parameters. Values are clamped to [0, 1]. The audio
// goroutine picks them up at the next block.
func (r *Reverb) SetParams(p Params) {
	p = p.Clamped()
	r.params.Store(&p)
}

// Params returns the most recently published parameters.
func (r *Reverb) Params() Params {
	return *r.params.Load()
}

// Stream implements beep.Streamer.
func (r *Reverb) Stream(samples [][2]float64) (int, bool) {
	n, ok := r.src.Stream(samples)
	if p := r.params.Load(); p != r.applied {
		r.apply(p)
	}
	for i := range samples[:n] {
		samples[i] = r.process(samples[i])
	}
	return n, ok
}

// Err implements beep.Streamer.
func (r *Reverb) Err() error {
	return r.src.Err()
}

func (r *Reverb) apply(p *Params) {
	r.applied = p
	r.dry = p.DryLevel
	r.wet = p.WetLevel * scaleWet
	feedback := p.RoomSize*scaleRoom + offsetRoom
	damp := p.Damping * scaleDamp
	for ch := range r.combs {
		for i := range r.combs[ch] {
			c := &r.combs[ch][i]
			c.feedback = feedback
			c.damp1 = damp
			c.damp2 = 1 - damp
		}
	}
}

func (r *Reverb) process(in [2]float64) [2]float64 {
	input := (in[0] + in[1]) * fixedGain
	var out [2]float64
	for ch := 0; ch < 2; ch++ {
		var acc float64
		for i := range r.combs[ch] {
			acc += r.combs[ch][i].process(input)
		}
		for i := range r.allpasses[ch] {
			acc = r.allpasses[ch][i].process(acc)
		}
		out[ch] = acc*r.wet + in[ch]*r.dry
	}
	return out
}

// Reset clears every delay line.
func (r *Reverb) Reset() {
	for ch := range r.combs {
		for i := range r.combs[ch] {
			r.combs[ch][i].reset()
		}
		for i := range r.allpasses[ch] {
			r.allpasses[ch][i].reset()
		}
	}
}

type comb struct {
	buf      []float64
	idx      int
	store    float64
	feedback float64
	damp1    float64
	damp2    float64
}

func (c *comb) process(in float64) float64 {
	out := c.buf[c.idx]
	c.store = out*c.damp2 + c.store*c.damp1
	c.buf[c.idx] = in + c.store*c.feedback
	if c.idx++; c.idx == len(c.buf) {
		c.idx = 0
	}
	return out
}

func (c *comb) reset() {
	clear(c.buf)
	c.idx, c.store = 0, 0
}

type allpass struct {
	buf []float64
	idx int
}

const allpassFeedback = 0.5

func (a *allpass) process(in float64) float64 {
	bufOut := a.buf[a.idx]
	a.buf[a.idx] = in + bufOut*allpassFeedback
	if a.idx++; a.idx == len(a.buf) {
		a.idx = 0
	}
	return bufOut - in
}

func (a *allpass) reset() {
	clear(a.buf)
	a.idx = 0
}
