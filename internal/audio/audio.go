package audio

import (
	"encoding/binary"
	"time"
)

const (
	SampleRate    = 48000
	Channels      = 2
	BitDepth      = 16
	FrameDuration = 20 * time.Millisecond
	FrameSize     = 960                  // samples per channel per 20ms frame
	FrameSamples  = FrameSize * Channels // total interleaved samples per frame
	FrameBytes    = FrameSamples * 2     // bytes per frame (int16 = 2 bytes)
)

// FramesToDuration converts a frame count at SampleRate to wall time.
func FramesToDuration(frames int) time.Duration {
	return time.Duration(frames) * time.Second / SampleRate
}

// AppendInt16 appends a stereo float block to dst as interleaved int16 PCM,
// clipping anything outside [-1, 1].
func AppendInt16(dst []int16, block [][2]float64) []int16 {
	for _, f := range block {
		dst = append(dst, toInt16(f[0]), toInt16(f[1]))
	}
	return dst
}

// FromInt16 maps a PCM sample onto [-1, 1).
func FromInt16(s int16) float64 {
	return float64(s) / 32768
}

func toInt16(v float64) int16 {
	s := v * 32767
	// Clip to int16 range
	if s > 32767 {
		s = 32767
	} else if s < -32768 {
		s = -32768
	}
	return int16(s)
}

// SamplesToBytes converts int16 samples to little-endian bytes.
func SamplesToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

// BytesToSamples decodes little-endian int16 PCM. A trailing odd byte is dropped.
func BytesToSamples(buf []byte) []int16 {
	samples := make([]int16, len(buf)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(buf[i*2 : i*2+2]))
	}
	return samples
}
