// Package stream broadcasts the master mix to remote listeners over chunked
// HTTP MP3 and WebRTC Opus.
package stream

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// listenerBuffer is ~3 seconds of 20ms frames.
const listenerBuffer = 150

// Broadcaster fans out PCM frames from one source to N listeners. Slow
// listeners lose frames instead of holding up the rest.
type Broadcaster struct {
	log     *zap.Logger
	dropped atomic.Int64

	mu        sync.RWMutex
	listeners map[*Listener]struct{}
}

// Listener receives PCM frames from the broadcaster.
type Listener struct {
	C    chan []int16
	done chan struct{}
	once sync.Once
}

// Done is closed once the listener is unsubscribed.
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

// NewBroadcaster creates a broadcaster with no listeners.
func NewBroadcaster(log *zap.Logger) *Broadcaster {
	return &Broadcaster{
		log:       log,
		listeners: make(map[*Listener]struct{}),
	}
}

// Subscribe registers a new listener.
func (b *Broadcaster) Subscribe() *Listener {
	l := &Listener{
		C:    make(chan []int16, listenerBuffer),
		done: make(chan struct{}),
	}
	b.mu.Lock()
	b.listeners[l] = struct{}{}
	b.mu.Unlock()
	return l
}

// Unsubscribe removes l. Calling it more than once is harmless.
func (b *Broadcaster) Unsubscribe(l *Listener) {
	b.mu.Lock()
	delete(b.listeners, l)
	b.mu.Unlock()
	l.once.Do(func() { close(l.done) })
}

// ListenerCount returns the number of active listeners.
func (b *Broadcaster) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// Dropped returns how many listener deliveries were skipped so far.
func (b *Broadcaster) Dropped() int64 {
	return b.dropped.Load()
}

// Run forwards frames from source until ctx is cancelled or source closes.
func (b *Broadcaster) Run(ctx context.Context, source <-chan []int16) {
	defer b.log.Debug("broadcaster stopped", zap.Int64("dropped", b.Dropped()))
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-source:
			if !ok {
				return
			}
			b.publish(frame)
		}
	}
}

func (b *Broadcaster) publish(frame []int16) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for l := range b.listeners {
		select {
		case l.C <- frame:
		default:
			b.dropped.Add(1)
		}
	}
}
