package decode

import (
	"fmt"
	"io/fs"
	"sync"
	"time"
)

// Memory serves clips that are already decoded, keyed by path. It backs
// generated material and tests.
type Memory struct {
	mu    sync.RWMutex
	clips map[string]*Clip
}

// NewMemory creates an empty in-memory decoder.
func NewMemory() *Memory {
	return &Memory{clips: make(map[string]*Clip)}
}

// Put registers a clip under its path.
func (m *Memory) Put(c *Clip) {
	m.mu.Lock()
	m.clips[c.Path] = c
	m.mu.Unlock()
}

// Decode implements Decoder.
func (m *Memory) Decode(path string) (*Clip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clips[path]
	if !ok {
		return nil, fmt.Errorf("decode %s: %w", path, fs.ErrNotExist)
	}
	return c, nil
}

// Probe implements Decoder.
func (m *Memory) Probe(path string) (time.Duration, error) {
	c, err := m.Decode(path)
	if err != nil {
		return 0, err
	}
	return c.Duration(), nil
}
