package output

import (
	"context"
	"fmt"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"go.uber.org/zap"

	"github.com/satindergrewal/deckmix/internal/audio"
)

// Speaker plays the mix on the default sound device. The device callback
// pulls from the source directly, so Stream runs on the driver's goroutine.
type Speaker struct {
	buffer time.Duration
	log    *zap.Logger
}

// NewSpeaker creates a speaker output with the given device buffer length.
func NewSpeaker(buffer time.Duration, log *zap.Logger) *Speaker {
	return &Speaker{buffer: buffer, log: log}
}

// BufferFrames returns the device buffer size in frames.
func (s *Speaker) BufferFrames() int {
	return max(1, beep.SampleRate(audio.SampleRate).N(s.buffer))
}

// Run opens the device, plays src until ctx is cancelled, then closes it.
func (s *Speaker) Run(ctx context.Context, src beep.Streamer) error {
	if err := speaker.Init(audio.SampleRate, s.BufferFrames()); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(src)
	s.log.Info("speaker output started", zap.Int("buffer_frames", s.BufferFrames()))

	<-ctx.Done()
	speaker.Clear()
	speaker.Close()
	s.log.Info("speaker output stopped")
	return nil
}
