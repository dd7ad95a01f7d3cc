package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Output sinks for the master mix.
const (
	OutputStream  = "stream"
	OutputSpeaker = "speaker"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Server
	Port int

	// Library
	MusicDir string
	Watch    bool // ingest files added to MusicDir while running

	// Audio engine
	Output          string        // stream or speaker
	SpeakerBuffer   time.Duration // device buffer when Output is speaker
	ResampleQuality int           // beep resampler quality, 1-64
	BalanceMode     string        // absolute or cumulative
	ClockInterval   time.Duration // position polling cadence

	// Encoding
	FFmpegPath  string
	OpusBitrate int    // WebRTC, bits per second
	MP3Bitrate  string // HTTP stream, ffmpeg -b:a syntax

	// Logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables with sane defaults.
// Variables in the given .env files (default ".env") fill in anything not
// already set; a missing file is not an error.
func Load(envFiles ...string) Config {
	_ = godotenv.Load(envFiles...)

	return Config{
		Port: envInt("DECKMIX_PORT", 8080),

		MusicDir: envStr("DECKMIX_MUSIC_DIR", ""),
		Watch:    envBool("DECKMIX_WATCH", true),

		Output:          strings.ToLower(envStr("DECKMIX_OUTPUT", OutputStream)),
		SpeakerBuffer:   time.Duration(envInt("DECKMIX_SPEAKER_BUFFER_MS", 100)) * time.Millisecond,
		ResampleQuality: envInt("DECKMIX_RESAMPLE_QUALITY", 4),
		BalanceMode:     strings.ToLower(envStr("DECKMIX_BALANCE_MODE", "absolute")),
		ClockInterval:   time.Duration(envInt("DECKMIX_CLOCK_INTERVAL_MS", 100)) * time.Millisecond,

		FFmpegPath:  envStr("DECKMIX_FFMPEG", "ffmpeg"),
		OpusBitrate: envInt("DECKMIX_OPUS_BITRATE", 128000),
		MP3Bitrate:  envStr("DECKMIX_MP3_BITRATE", "192k"),

		LogLevel: envStr("LOG_LEVEL", "info"),
		LogFile:  envStr("LOG_FILE", ""),
	}
}

// Validate reports every setting that is out of range.
func (c Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("DECKMIX_PORT %d out of range", c.Port))
	}
	if c.Output != OutputStream && c.Output != OutputSpeaker {
		errs = append(errs, fmt.Errorf("DECKMIX_OUTPUT must be %q or %q, got %q", OutputStream, OutputSpeaker, c.Output))
	}
	if c.SpeakerBuffer <= 0 {
		errs = append(errs, fmt.Errorf("DECKMIX_SPEAKER_BUFFER_MS must be positive"))
	}
	if c.ResampleQuality < 1 || c.ResampleQuality > 64 {
		errs = append(errs, fmt.Errorf("DECKMIX_RESAMPLE_QUALITY %d not in 1-64", c.ResampleQuality))
	}
	if c.BalanceMode != "absolute" && c.BalanceMode != "cumulative" {
		errs = append(errs, fmt.Errorf("DECKMIX_BALANCE_MODE must be absolute or cumulative, got %q", c.BalanceMode))
	}
	if c.ClockInterval <= 0 {
		errs = append(errs, fmt.Errorf("DECKMIX_CLOCK_INTERVAL_MS must be positive"))
	}
	if c.OpusBitrate < 6000 || c.OpusBitrate > 510000 {
		errs = append(errs, fmt.Errorf("DECKMIX_OPUS_BITRATE %d not in 6000-510000", c.OpusBitrate))
	}
	return errors.Join(errs...)
}

// WatchEnabled reports whether the music directory watcher should run.
func (c Config) WatchEnabled() bool {
	return c.Watch && c.MusicDir != ""
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
