package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/satindergrewal/deckmix/internal/deck"
)

type fixedSource struct {
	name string
	pos  float64
}

func (f *fixedSource) Status() deck.Status {
	return deck.Status{Name: f.name, Position: f.pos}
}

func TestDefaultInterval(t *testing.T) {
	c := New(0, zap.NewNop())
	assert.Equal(t, DefaultInterval, c.Interval())
}

func TestSampleReadsEverySource(t *testing.T) {
	left := &fixedSource{name: "left", pos: 1.5}
	right := &fixedSource{name: "right", pos: 3}
	c := New(time.Second, zap.NewNop(), left, right)

	now := time.Unix(100, 0)
	tick := c.Sample(now)
	require.Len(t, tick.Decks, 2)
	assert.Equal(t, "left", tick.Decks[0].Name)
	assert.Equal(t, 3.0, tick.Decks[1].Position)
	assert.Equal(t, now, c.Last().Time)
}

func TestSubscribersReceiveTicks(t *testing.T) {
	c := New(time.Second, zap.NewNop(), &fixedSource{name: "left"})
	sub := c.Subscribe()
	assert.Equal(t, 1, c.SubscriberCount())

	c.Sample(time.Unix(1, 0))
	select {
	case tick := <-sub.C:
		assert.Equal(t, time.Unix(1, 0), tick.Time)
	default:
		t.Fatal("expected a tick")
	}

	c.Unsubscribe(sub)
	c.Unsubscribe(sub)
	assert.Zero(t, c.SubscriberCount())
	select {
	case <-sub.Done():
	default:
		t.Fatal("done should be closed after unsubscribe")
	}
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	c := New(time.Second, zap.NewNop(), &fixedSource{})
	sub := c.Subscribe()
	defer c.Unsubscribe(sub)

	for i := 0; i < 100; i++ {
		c.Sample(time.Unix(int64(i), 0))
	}
	assert.Len(t, sub.C, cap(sub.C))
}

func TestRunPollsUntilCancelled(t *testing.T) {
	c := New(5*time.Millisecond, zap.NewNop(), &fixedSource{name: "left"})
	sub := c.Subscribe()
	defer c.Unsubscribe(sub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	select {
	case <-sub.C:
	case <-time.After(2 * time.Second):
		t.Fatal("no tick within 2s")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
