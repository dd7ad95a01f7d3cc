// Package decode turns audio files into in-memory PCM clips at the engine's
// sample rate. Everything here runs on control goroutines; nothing in this
// package is safe to call from the real-time path except Clip.Read.
package decode

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/satindergrewal/deckmix/internal/audio"
)

// ErrUnsupportedFormat is returned when a decoder does not handle a file's format.
var ErrUnsupportedFormat = errors.New("decode: unsupported format")

// Decoder opens audio files. Decode produces the full clip; Probe reports the
// duration without keeping any samples.
type Decoder interface {
	Decode(path string) (*Clip, error)
	Probe(path string) (time.Duration, error)
}

// Clip is a decoded track: interleaved stereo int16 PCM at audio.SampleRate.
// A Clip is never modified after construction.
type Clip struct {
	Path    string
	Samples []int16
}

// NewClip wraps interleaved stereo samples. A trailing half frame is dropped.
func NewClip(path string, samples []int16) *Clip {
	return &Clip{Path: path, Samples: samples[:len(samples)-len(samples)%audio.Channels]}
}

// Frames returns the clip length in stereo frames.
func (c *Clip) Frames() int {
	return len(c.Samples) / audio.Channels
}

// Duration returns the clip length in wall time.
func (c *Clip) Duration() time.Duration {
	return audio.FramesToDuration(c.Frames())
}

// Read copies frames starting at frame `from` into dst and returns how many
// were copied. It does not allocate.
func (c *Clip) Read(dst [][2]float64, from int) int {
	total := c.Frames()
	if from < 0 || from >= total {
		return 0
	}
	n := min(len(dst), total-from)
	s := c.Samples[from*audio.Channels:]
	for i := 0; i < n; i++ {
		dst[i][0] = audio.FromInt16(s[2*i])
		dst[i][1] = audio.FromInt16(s[2*i+1])
	}
	return n
}

var audioExts = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".oga":  true,
	".m4a":  true,
	".aac":  true,
	".aiff": true,
	".opus": true,
}

// IsAudioFile reports whether path has an extension some decoder in this
// package can be expected to handle.
func IsAudioFile(path string) bool {
	return audioExts[strings.ToLower(filepath.Ext(path))]
}
