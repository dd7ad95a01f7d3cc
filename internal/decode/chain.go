package decode

import (
	"errors"
	"time"
)

// Chain tries decoders in order. It moves to the next decoder only when the
// current one reports ErrUnsupportedFormat; any other failure is final.
type Chain []Decoder

// Decode implements Decoder.
func (c Chain) Decode(path string) (*Clip, error) {
	err := ErrUnsupportedFormat
	for _, d := range c {
		var clip *Clip
		clip, err = d.Decode(path)
		if err == nil {
			return clip, nil
		}
		if !errors.Is(err, ErrUnsupportedFormat) {
			return nil, err
		}
	}
	return nil, err
}

// Probe implements Decoder.
func (c Chain) Probe(path string) (time.Duration, error) {
	err := ErrUnsupportedFormat
	for _, d := range c {
		var dur time.Duration
		dur, err = d.Probe(path)
		if err == nil {
			return dur, nil
		}
		if !errors.Is(err, ErrUnsupportedFormat) {
			return 0, err
		}
	}
	return 0, err
}
