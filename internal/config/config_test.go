package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var allVars = []string{
	"DECKMIX_PORT", "DECKMIX_MUSIC_DIR", "DECKMIX_WATCH", "DECKMIX_OUTPUT",
	"DECKMIX_SPEAKER_BUFFER_MS", "DECKMIX_RESAMPLE_QUALITY", "DECKMIX_BALANCE_MODE",
	"DECKMIX_CLOCK_INTERVAL_MS", "DECKMIX_FFMPEG", "DECKMIX_OPUS_BITRATE",
	"DECKMIX_MP3_BITRATE", "LOG_LEVEL", "LOG_FILE",
}

// clearEnv unsets every variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load(noEnvFile(t))

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.MusicDir != "" {
		t.Errorf("MusicDir = %q, want empty default", cfg.MusicDir)
	}
	if !cfg.Watch {
		t.Error("Watch should default to true")
	}
	if cfg.WatchEnabled() {
		t.Error("WatchEnabled should be false without a music dir")
	}
	if cfg.Output != OutputStream {
		t.Errorf("Output = %q, want %q", cfg.Output, OutputStream)
	}
	if cfg.SpeakerBuffer != 100*time.Millisecond {
		t.Errorf("SpeakerBuffer = %v, want 100ms", cfg.SpeakerBuffer)
	}
	if cfg.ResampleQuality != 4 {
		t.Errorf("ResampleQuality = %d, want 4", cfg.ResampleQuality)
	}
	if cfg.BalanceMode != "absolute" {
		t.Errorf("BalanceMode = %q, want absolute", cfg.BalanceMode)
	}
	if cfg.ClockInterval != 100*time.Millisecond {
		t.Errorf("ClockInterval = %v, want 100ms", cfg.ClockInterval)
	}
	if cfg.FFmpegPath != "ffmpeg" {
		t.Errorf("FFmpegPath = %q, want ffmpeg", cfg.FFmpegPath)
	}
	if cfg.OpusBitrate != 128000 {
		t.Errorf("OpusBitrate = %d, want 128000", cfg.OpusBitrate)
	}
	if cfg.MP3Bitrate != "192k" {
		t.Errorf("MP3Bitrate = %q, want 192k", cfg.MP3Bitrate)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DECKMIX_PORT", "3000")
	t.Setenv("DECKMIX_MUSIC_DIR", "/music")
	t.Setenv("DECKMIX_WATCH", "false")
	t.Setenv("DECKMIX_OUTPUT", "Speaker")
	t.Setenv("DECKMIX_SPEAKER_BUFFER_MS", "50")
	t.Setenv("DECKMIX_RESAMPLE_QUALITY", "6")
	t.Setenv("DECKMIX_BALANCE_MODE", "cumulative")
	t.Setenv("DECKMIX_CLOCK_INTERVAL_MS", "250")
	t.Setenv("DECKMIX_FFMPEG", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("DECKMIX_OPUS_BITRATE", "96000")
	t.Setenv("DECKMIX_MP3_BITRATE", "320k")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FILE", "/var/log/deckmix.log")

	cfg := Load(noEnvFile(t))

	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.MusicDir != "/music" || cfg.Watch {
		t.Errorf("MusicDir/Watch = %q/%v, want /music/false", cfg.MusicDir, cfg.Watch)
	}
	if cfg.Output != OutputSpeaker {
		t.Errorf("Output = %q, want speaker", cfg.Output)
	}
	if cfg.SpeakerBuffer != 50*time.Millisecond {
		t.Errorf("SpeakerBuffer = %v, want 50ms", cfg.SpeakerBuffer)
	}
	if cfg.ResampleQuality != 6 {
		t.Errorf("ResampleQuality = %d, want 6", cfg.ResampleQuality)
	}
	if cfg.BalanceMode != "cumulative" {
		t.Errorf("BalanceMode = %q, want cumulative", cfg.BalanceMode)
	}
	if cfg.ClockInterval != 250*time.Millisecond {
		t.Errorf("ClockInterval = %v, want 250ms", cfg.ClockInterval)
	}
	if cfg.FFmpegPath != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("FFmpegPath = %q", cfg.FFmpegPath)
	}
	if cfg.OpusBitrate != 96000 || cfg.MP3Bitrate != "320k" {
		t.Errorf("bitrates = %d/%q", cfg.OpusBitrate, cfg.MP3Bitrate)
	}
	if cfg.LogLevel != "debug" || cfg.LogFile != "/var/log/deckmix.log" {
		t.Errorf("logging = %q/%q", cfg.LogLevel, cfg.LogFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("DECKMIX_PORT=9090\nDECKMIX_MUSIC_DIR=/srv/music\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DECKMIX_PORT", "7000")
	t.Cleanup(func() { os.Unsetenv("DECKMIX_MUSIC_DIR") })

	cfg := Load(path)
	if cfg.Port != 7000 {
		t.Errorf("existing env must win over .env: Port = %d", cfg.Port)
	}
	if cfg.MusicDir != "/srv/music" {
		t.Errorf("MusicDir = %q, want value from .env", cfg.MusicDir)
	}
	if !cfg.WatchEnabled() {
		t.Error("WatchEnabled should be true with a music dir")
	}
}

func TestInvalidNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("DECKMIX_PORT", "not-a-number")
	t.Setenv("DECKMIX_WATCH", "maybe")
	cfg := Load(noEnvFile(t))
	if cfg.Port != 8080 {
		t.Errorf("Invalid int env should fallback to default: got %d, want 8080", cfg.Port)
	}
	if !cfg.Watch {
		t.Error("Invalid bool env should fallback to default")
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	base := Load(noEnvFile(t))

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Port = 0 }},
		{"output", func(c *Config) { c.Output = "alsa" }},
		{"speaker buffer", func(c *Config) { c.SpeakerBuffer = 0 }},
		{"quality", func(c *Config) { c.ResampleQuality = 65 }},
		{"balance", func(c *Config) { c.BalanceMode = "relative" }},
		{"clock", func(c *Config) { c.ClockInterval = -time.Second }},
		{"opus", func(c *Config) { c.OpusBitrate = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate should reject bad %s", tt.name)
			}
		})
	}
}
