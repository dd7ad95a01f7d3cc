// Package library holds the in-memory track collection and its filtered view.
package library

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Track is a file known to the library. Tracks are immutable once created.
type Track struct {
	ID       string        `json:"id"`
	FilePath string        `json:"file_path"`
	Title    string        `json:"title"`
	Duration time.Duration `json:"-"`
}

// NewTrack builds a track for path with a fresh ID.
func NewTrack(path string, duration time.Duration) *Track {
	return &Track{
		ID:       uuid.NewString(),
		FilePath: path,
		Title:    TitleFromPath(path),
		Duration: max(duration, 0),
	}
}

// DurationSeconds returns the duration as fractional seconds.
func (t *Track) DurationSeconds() float64 {
	return t.Duration.Seconds()
}

// MarshalJSON reports the duration in seconds.
func (t *Track) MarshalJSON() ([]byte, error) {
	type plain Track
	return json.Marshal(struct {
		*plain
		Duration float64 `json:"duration"`
	}{(*plain)(t), t.DurationSeconds()})
}

// TitleFromPath strips everything up to the last path separator (either
// slash) and everything from the last dot.
func TitleFromPath(path string) string {
	title := path
	if i := strings.LastIndexAny(title, `/\`); i >= 0 {
		title = title[i+1:]
	}
	if i := strings.LastIndexByte(title, '.'); i >= 0 {
		title = title[:i]
	}
	return title
}
