package library

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrIndexOutOfRange is returned when a filtered-view index does not exist.
var ErrIndexOutOfRange = errors.New("library: index out of range")

// Prober reports a file's duration. decode.Decoder satisfies it.
type Prober interface {
	Probe(path string) (time.Duration, error)
}

// Library is the ordered set of ingested tracks plus the current filter.
// All methods are safe for concurrent use.
type Library struct {
	prober Prober
	log    *zap.Logger

	mu       sync.RWMutex
	tracks   []*Track
	byID     map[string]*Track
	byPath   map[string]*Track
	filter   string
	filtered []*Track
}

// New creates an empty library.
func New(prober Prober, log *zap.Logger) *Library {
	return &Library{
		prober: prober,
		log:    log,
		byID:   make(map[string]*Track),
		byPath: make(map[string]*Track),
	}
}

// Ingest probes path and appends a track for it. A failed probe still adds
// the track, with zero duration.
func (l *Library) Ingest(path string) *Track {
	dur, err := l.prober.Probe(path)
	if err != nil {
		l.log.Error("probe failed, ingesting with zero duration",
			zap.String("path", path), zap.Error(err))
		dur = 0
	}
	t := NewTrack(path, dur)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.tracks = append(l.tracks, t)
	l.byID[t.ID] = t
	l.byPath[path] = t
	if strings.Contains(t.Title, l.filter) {
		l.filtered = append(l.filtered, t)
	}

	l.log.Info("track ingested",
		zap.String("id", t.ID),
		zap.String("title", t.Title),
		zap.Duration("duration", t.Duration))
	return t
}

// IngestAll ingests paths in order.
func (l *Library) IngestAll(paths []string) []*Track {
	out := make([]*Track, 0, len(paths))
	for _, p := range paths {
		out = append(out, l.Ingest(p))
	}
	return out
}

// SetFilter replaces the filter and recomputes the view. Matching is a
// case-sensitive substring test on the title; "" matches everything.
func (l *Library) SetFilter(substr string) []*Track {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.filter = substr
	l.filtered = l.filtered[:0:0]
	for _, t := range l.tracks {
		if strings.Contains(t.Title, substr) {
			l.filtered = append(l.filtered, t)
		}
	}
	return append([]*Track(nil), l.filtered...)
}

// Filter returns the active filter string.
func (l *Library) Filter() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.filter
}

// View returns a snapshot of the filtered tracks in insertion order.
func (l *Library) View() []*Track {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*Track(nil), l.filtered...)
}

// TrackAt returns the track at index i of the filtered view.
func (l *Library) TrackAt(i int) (*Track, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.filtered) {
		return nil, fmt.Errorf("%w: %d (view has %d)", ErrIndexOutOfRange, i, len(l.filtered))
	}
	return l.filtered[i], nil
}

// Tracks returns every ingested track in insertion order.
func (l *Library) Tracks() []*Track {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*Track(nil), l.tracks...)
}

// Len returns the number of ingested tracks.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.tracks)
}

// Lookup finds a track by ID.
func (l *Library) Lookup(id string) (*Track, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.byID[id]
	return t, ok
}

// Contains reports whether path has already been ingested.
func (l *Library) Contains(path string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.byPath[path]
	return ok
}
