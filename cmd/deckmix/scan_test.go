package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satindergrewal/deckmix/internal/audio"
	"github.com/satindergrewal/deckmix/internal/config"
	"github.com/satindergrewal/deckmix/internal/decode"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{59 * time.Second, "0:59"},
		{3*time.Minute + 7*time.Second, "3:07"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
		{1500 * time.Millisecond, "0:02"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.in), tt.in.String())
	}
}

func TestPrintScan(t *testing.T) {
	color.NoColor = true
	mem := decode.NewMemory()
	mem.Put(decode.NewClip("/m/intro.wav", make([]int16, 90*audio.SampleRate*audio.Channels)))

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	require.NoError(t, printScan(cmd, mem, []string{"/m/intro.wav", "/m/broken.mp3"}))

	out := buf.String()
	assert.Contains(t, out, "intro")
	assert.Contains(t, out, "1:30")
	assert.Contains(t, out, "broken")
	assert.Contains(t, out, "unreadable")
	assert.Contains(t, out, "2 tracks, 1 unreadable, 1:30 total")
}

func TestApplyFlags(t *testing.T) {
	cmd := &cobra.Command{}
	addServeFlags(cmd)
	require.NoError(t, cmd.Flags().Set("port", "9000"))
	require.NoError(t, cmd.Flags().Set("output", "speaker"))

	cfg := config.Config{Port: 8080, Output: config.OutputStream, MusicDir: "/srv"}
	applyFlags(cmd, &cfg)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, config.OutputSpeaker, cfg.Output)
	assert.Equal(t, "/srv", cfg.MusicDir)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["scan"])
}
