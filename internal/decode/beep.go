package decode

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/satindergrewal/deckmix/internal/audio"
)

const streamChunk = 4096

// BeepDecoder decodes WAV, MP3, FLAC and Ogg Vorbis natively, resampling to
// audio.SampleRate when the file uses a different rate.
type BeepDecoder struct {
	quality int
}

// NewBeepDecoder creates a decoder. quality is the beep resampling quality
// (1-64) used when a file's rate differs from the engine rate.
func NewBeepDecoder(quality int) *BeepDecoder {
	return &BeepDecoder{quality: max(1, min(quality, 64))}
}

func (d *BeepDecoder) open(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav", ".mp3", ".flac", ".ogg", ".oga":
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch ext {
	case ".wav":
		s, format, err = wav.Decode(f)
	case ".mp3":
		s, format, err = mp3.Decode(f)
	case ".flac":
		s, format, err = flac.Decode(f)
	default:
		s, format, err = vorbis.Decode(f)
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return s, format, nil
}

// Decode reads the whole file into a Clip.
func (d *BeepDecoder) Decode(path string) (*Clip, error) {
	s, format, err := d.open(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	var src beep.Streamer = s
	frames := s.Len()
	if format.SampleRate != audio.SampleRate {
		src = beep.Resample(d.quality, format.SampleRate, audio.SampleRate, s)
		frames = int(int64(frames) * audio.SampleRate / int64(format.SampleRate))
	}

	samples := make([]int16, 0, (frames+streamChunk)*audio.Channels)
	buf := make([][2]float64, streamChunk)
	for {
		n, ok := src.Stream(buf)
		samples = audio.AppendInt16(samples, buf[:n])
		if !ok {
			break
		}
	}
	if err := src.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return NewClip(path, samples), nil
}

// Probe reads only the header to compute the duration.
func (d *BeepDecoder) Probe(path string) (time.Duration, error) {
	s, format, err := d.open(path)
	if err != nil {
		return 0, err
	}
	defer s.Close()
	return format.SampleRate.D(s.Len()), nil
}
