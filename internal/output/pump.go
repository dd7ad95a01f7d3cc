// Package output drives the master mix: either paced into 20ms PCM frames for
// the broadcast fan-out, or handed to the local sound card.
package output

import (
	"context"
	"time"

	"github.com/gopxl/beep/v2"
	"go.uber.org/zap"

	"github.com/satindergrewal/deckmix/internal/audio"
)

// Pump pulls the mix at real-time rate and emits interleaved int16 frames of
// audio.FrameSize stereo samples. It stands in for a sound card's callback when
// the process runs headless.
type Pump struct {
	src     beep.Streamer
	frameCh chan []int16
	buf     [][2]float64
	log     *zap.Logger
}

// NewPump creates a pump over src.
func NewPump(src beep.Streamer, log *zap.Logger) *Pump {
	return &Pump{
		src:     src,
		frameCh: make(chan []int16, 100),
		buf:     make([][2]float64, audio.FrameSize),
		log:     log,
	}
}

// Frames returns the channel of outgoing PCM frames (20ms each). It is closed
// when Run returns.
func (p *Pump) Frames() <-chan []int16 {
	return p.frameCh
}

// Step pulls one frame from the source. Run calls it once per tick.
func (p *Pump) Step() []int16 {
	n, _ := p.src.Stream(p.buf)
	clear(p.buf[n:])
	return audio.AppendInt16(make([]int16, 0, audio.FrameSamples), p.buf)
}

// Run paces Step on a FrameDuration ticker until ctx is cancelled. A frame
// that cannot be handed off before the next tick is dropped so the source
// keeps real-time pace.
func (p *Pump) Run(ctx context.Context) {
	defer close(p.frameCh)

	ticker := time.NewTicker(audio.FrameDuration)
	defer ticker.Stop()

	p.log.Info("output pump started", zap.Duration("frame", audio.FrameDuration))
	var dropped int
	for {
		select {
		case <-ctx.Done():
			p.log.Info("output pump stopped", zap.Int("dropped_frames", dropped))
			return
		case <-ticker.C:
		}

		frame := p.Step()
		select {
		case p.frameCh <- frame:
		case <-ctx.Done():
			return
		default:
			dropped++
			if dropped%500 == 1 {
				p.log.Warn("output consumer falling behind", zap.Int("dropped_frames", dropped))
			}
		}
	}
}
