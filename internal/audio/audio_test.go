package audio

import (
	"testing"
	"time"
)

// --- Constants ---

func TestConstants(t *testing.T) {
	// 48kHz * 20ms = 960 samples per channel
	if got := SampleRate * int(FrameDuration/time.Millisecond) / 1000; got != FrameSize {
		t.Errorf("FrameSize mismatch: want %d, got %d", got, FrameSize)
	}
	if FrameSamples != FrameSize*Channels {
		t.Errorf("FrameSamples = %d, want %d", FrameSamples, FrameSize*Channels)
	}
	if FrameBytes != FrameSamples*2 {
		t.Errorf("FrameBytes = %d, want %d", FrameBytes, FrameSamples*2)
	}
}

func TestFramesToDuration(t *testing.T) {
	if got := FramesToDuration(SampleRate); got != time.Second {
		t.Errorf("FramesToDuration(%d) = %v, want 1s", SampleRate, got)
	}
}

// --- Smoothstep ---

func TestSmoothstepBoundaries(t *testing.T) {
	tests := []struct {
		input float64
		want  float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{1.5, 1},
	}
	for _, tt := range tests {
		got := Smoothstep(tt.input)
		if got != tt.want {
			t.Errorf("Smoothstep(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSmoothstepMonotonic(t *testing.T) {
	prev := 0.0
	for i := 1; i <= 100; i++ {
		x := float64(i) / 100.0
		val := Smoothstep(x)
		if val < prev {
			t.Errorf("Smoothstep not monotonic: f(%v)=%v < f(%v)=%v", x, val, float64(i-1)/100.0, prev)
		}
		prev = val
	}
}

// --- ApplyGain ---

func TestApplyGainFlat(t *testing.T) {
	block := [][2]float64{{1, -1}, {0.5, -0.5}}
	ApplyGain(block, 0.5, 0.5)
	want := [][2]float64{{0.5, -0.5}, {0.25, -0.25}}
	for i := range block {
		if block[i] != want[i] {
			t.Errorf("frame %d = %v, want %v", i, block[i], want[i])
		}
	}
}

func TestApplyGainUnityLeavesBlock(t *testing.T) {
	block := [][2]float64{{0.3, -0.7}}
	ApplyGain(block, 1, 1)
	if block[0] != [2]float64{0.3, -0.7} {
		t.Errorf("unity gain modified block: %v", block[0])
	}
}

func TestApplyGainRampEndsOnTarget(t *testing.T) {
	block := make([][2]float64, 64)
	for i := range block {
		block[i] = [2]float64{1, 1}
	}
	ApplyGain(block, 0, 1)

	if last := block[len(block)-1][0]; last != 1 {
		t.Errorf("last frame gain = %v, want 1", last)
	}
	prev := 0.0
	for i, f := range block {
		if f[0] < prev {
			t.Fatalf("ramp not monotonic at frame %d: %v < %v", i, f[0], prev)
		}
		prev = f[0]
	}
}

// --- PCM conversion ---

func TestAppendInt16Clipping(t *testing.T) {
	got := AppendInt16(nil, [][2]float64{{2, -2}, {0, 1}})
	want := []int16{32767, -32768, 0, 32767}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestFromInt16Range(t *testing.T) {
	if got := FromInt16(-32768); got != -1 {
		t.Errorf("FromInt16(-32768) = %v, want -1", got)
	}
	if got := FromInt16(0); got != 0 {
		t.Errorf("FromInt16(0) = %v, want 0", got)
	}
	if got := FromInt16(32767); got >= 1 {
		t.Errorf("FromInt16(32767) = %v, want < 1", got)
	}
}

func TestSamplesToBytes(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 256}
	buf := SamplesToBytes(samples)
	if len(buf) != len(samples)*2 {
		t.Fatalf("SamplesToBytes length = %d, want %d", len(buf), len(samples)*2)
	}

	// 256 = 0x0100 -> bytes [0x00, 0x01]
	idx := 5 * 2
	if buf[idx] != 0x00 || buf[idx+1] != 0x01 {
		t.Errorf("Sample 256 encoded as [%02x, %02x], want [00, 01]", buf[idx], buf[idx+1])
	}
}

func TestBytesToSamplesDropsOddByte(t *testing.T) {
	original := []int16{0, 1, -1, 32767, -32768, 12345, -6789}
	buf := append(SamplesToBytes(original), 0xff)

	recovered := BytesToSamples(buf)
	if len(recovered) != len(original) {
		t.Fatalf("len = %d, want %d", len(recovered), len(original))
	}
	for i, v := range original {
		if recovered[i] != v {
			t.Errorf("sample[%d]: got %d, want %d", i, recovered[i], v)
		}
	}
}
