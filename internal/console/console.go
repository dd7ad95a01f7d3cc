// Package console ties the library, the queues and the two decks together:
// routing library picks into a channel's queue and advancing a channel onto
// its deck.
package console

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/satindergrewal/deckmix/internal/deck"
	"github.com/satindergrewal/deckmix/internal/library"
	"github.com/satindergrewal/deckmix/internal/queue"
)

// ErrTrackNotFound is returned when a track ID is not in the library.
var ErrTrackNotFound = errors.New("console: track not found")

// Console owns the routing between library, queues and decks.
type Console struct {
	lib    *library.Library
	queues *queue.Queues
	decks  [2]*deck.Deck
	log    *zap.Logger

	// serialises Next per channel
	mu     [2]sync.Mutex
	primed [2]bool
}

// New creates a console over a left and right deck.
func New(lib *library.Library, queues *queue.Queues, left, right *deck.Deck, log *zap.Logger) *Console {
	return &Console{
		lib:    lib,
		queues: queues,
		decks:  [2]*deck.Deck{queue.Left: left, queue.Right: right},
		log:    log,
	}
}

// Library returns the track library.
func (c *Console) Library() *library.Library {
	return c.lib
}

// Queues returns the per-channel queues.
func (c *Console) Queues() *queue.Queues {
	return c.queues
}

// Deck returns the deck on ch.
func (c *Console) Deck(ch queue.Channel) (*deck.Deck, error) {
	if !ch.Valid() {
		return nil, fmt.Errorf("%w: %d", queue.ErrUnknownChannel, int(ch))
	}
	return c.decks[ch], nil
}

// Decks returns both decks, left first.
func (c *Console) Decks() []*deck.Deck {
	return c.decks[:]
}

// Route queues the track at index i of the library's filtered view on ch.
func (c *Console) Route(ch queue.Channel, i int) (*library.Track, error) {
	t, err := c.lib.TrackAt(i)
	if err != nil {
		return nil, err
	}
	if err := c.queues.Enqueue(ch, t); err != nil {
		return nil, err
	}
	c.log.Info("track routed", zap.Stringer("channel", ch), zap.String("title", t.Title))
	return t, nil
}

// RouteID queues the library track with the given ID on ch.
func (c *Console) RouteID(ch queue.Channel, id string) (*library.Track, error) {
	t, ok := c.lib.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTrackNotFound, id)
	}
	if err := c.queues.Enqueue(ch, t); err != nil {
		return nil, err
	}
	c.log.Info("track routed", zap.Stringer("channel", ch), zap.String("title", t.Title))
	return t, nil
}

// Next pops ch's queue and loads the track onto ch's deck. The first track
// a channel receives is only cued; every later one starts playing at once.
// An empty queue returns (nil, nil) and leaves the deck alone. A track that
// fails to load is dropped from the queue and the error returned.
func (c *Console) Next(ch queue.Channel) (*library.Track, error) {
	d, err := c.Deck(ch)
	if err != nil {
		return nil, err
	}

	c.mu[ch].Lock()
	defer c.mu[ch].Unlock()

	t, ok := c.queues.Advance(ch)
	if !ok {
		c.log.Debug("next on empty queue", zap.Stringer("channel", ch))
		return nil, nil
	}
	if err := d.LoadTrack(t); err != nil {
		return nil, err
	}

	if c.primed[ch] {
		d.Start()
	}
	c.primed[ch] = true
	c.log.Info("next track",
		zap.Stringer("channel", ch),
		zap.String("title", t.Title),
		zap.Stringer("state", d.State()))
	return t, nil
}
