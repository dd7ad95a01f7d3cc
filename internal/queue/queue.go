// Package queue holds the per-channel up-next lists that feed the decks.
package queue

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/satindergrewal/deckmix/internal/library"
)

// ErrUnknownChannel is returned for a channel other than Left or Right.
var ErrUnknownChannel = errors.New("queue: unknown channel")

// Channel identifies a deck side.
type Channel int

const (
	Left Channel = iota
	Right
	numChannels
)

// Channels lists every valid channel in order.
var Channels = []Channel{Left, Right}

func (c Channel) String() string {
	switch c {
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// Valid reports whether c names a real channel.
func (c Channel) Valid() bool {
	return c >= 0 && c < numChannels
}

// ParseChannel accepts "left"/"right" (any case) and "l"/"r".
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownChannel, s)
}

// Queues is one FIFO of track references per channel.
type Queues struct {
	mu     sync.Mutex
	queues [numChannels][]*library.Track
}

// New creates empty queues.
func New() *Queues {
	return &Queues{}
}

// Enqueue appends t to the channel's queue.
func (q *Queues) Enqueue(ch Channel, t *library.Track) error {
	if !ch.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownChannel, int(ch))
	}
	q.mu.Lock()
	q.queues[ch] = append(q.queues[ch], t)
	q.mu.Unlock()
	return nil
}

// Advance pops the front of the channel's queue. ok is false when the queue
// is empty or the channel is invalid.
func (q *Queues) Advance(ch Channel) (t *library.Track, ok bool) {
	if !ch.Valid() {
		return nil, false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.queues[ch]) == 0 {
		return nil, false
	}
	t = q.queues[ch][0]
	q.queues[ch][0] = nil
	q.queues[ch] = q.queues[ch][1:]
	return t, true
}

// Pending returns a snapshot of the channel's queue, front first.
func (q *Queues) Pending(ch Channel) []*library.Track {
	if !ch.Valid() {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*library.Track(nil), q.queues[ch]...)
}

// Len returns the channel's queue length.
func (q *Queues) Len(ch Channel) int {
	if !ch.Valid() {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queues[ch])
}

// Clear empties the channel's queue.
func (q *Queues) Clear(ch Channel) {
	if !ch.Valid() {
		return
	}
	q.mu.Lock()
	q.queues[ch] = nil
	q.mu.Unlock()
}
