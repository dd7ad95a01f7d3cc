// Package clock samples deck positions on a fixed cadence and fans the
// readings out to subscribers such as the websocket position feed.
package clock

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satindergrewal/deckmix/internal/deck"
)

// DefaultInterval is the 10 Hz polling cadence.
const DefaultInterval = 100 * time.Millisecond

// Source is anything that can report a deck status.
type Source interface {
	Status() deck.Status
}

// Tick is one sample of every source.
type Tick struct {
	Time  time.Time     `json:"time"`
	Decks []deck.Status `json:"decks"`
}

// Subscription receives ticks until cancelled.
type Subscription struct {
	C    chan Tick
	done chan struct{}
}

// Clock polls its sources. Readings are eventually consistent with the audio
// goroutine; nothing here blocks it.
type Clock struct {
	interval time.Duration
	sources  []Source
	log      *zap.Logger

	mu   sync.RWMutex
	last Tick
	subs map[*Subscription]struct{}
}

// New creates a clock. A non-positive interval means DefaultInterval.
func New(interval time.Duration, log *zap.Logger, sources ...Source) *Clock {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Clock{
		interval: interval,
		sources:  sources,
		log:      log,
		subs:     make(map[*Subscription]struct{}),
	}
}

// Interval returns the polling interval.
func (c *Clock) Interval() time.Duration {
	return c.interval
}

// Sample reads every source once, records the result as Last and delivers
// it to subscribers. Slow subscribers miss ticks.
func (c *Clock) Sample(now time.Time) Tick {
	t := Tick{Time: now, Decks: make([]deck.Status, len(c.sources))}
	for i, s := range c.sources {
		t.Decks[i] = s.Status()
	}

	c.mu.Lock()
	c.last = t
	for sub := range c.subs {
		select {
		case sub.C <- t:
		default:
		}
	}
	c.mu.Unlock()
	return t
}

// Last returns the most recent tick.
func (c *Clock) Last() Tick {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// Subscribe registers a subscriber with a small buffer.
func (c *Clock) Subscribe() *Subscription {
	sub := &Subscription{
		C:    make(chan Tick, 8),
		done: make(chan struct{}),
	}
	c.mu.Lock()
	c.subs[sub] = struct{}{}
	c.mu.Unlock()
	return sub
}

// Unsubscribe removes sub and closes its Done channel.
func (c *Clock) Unsubscribe(sub *Subscription) {
	c.mu.Lock()
	_, ok := c.subs[sub]
	delete(c.subs, sub)
	c.mu.Unlock()
	if ok {
		close(sub.done)
	}
}

// Done is closed when the subscription is cancelled.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// SubscriberCount returns the number of active subscribers.
func (c *Clock) SubscriberCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}

// Run samples on every interval until ctx is cancelled.
func (c *Clock) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.log.Info("clock started", zap.Duration("interval", c.interval), zap.Int("sources", len(c.sources)))
	for {
		select {
		case <-ctx.Done():
			c.log.Info("clock stopped")
			return
		case now := <-ticker.C:
			c.Sample(now)
		}
	}
}
