package deck

// transport reads frames from the current stage's source. It runs only on the
// audio goroutine; position and play state leave it through the deck's
// atomics.
type transport struct {
	d *Deck
}

// Stream implements beep.Streamer. It always fills samples, padding with
// silence, so the resampler downstream never sees the stream end.
func (t *transport) Stream(samples [][2]float64) (int, bool) {
	d := t.d
	src := d.cur.src
	if src == nil {
		clear(samples)
		return len(samples), true
	}

	pos := d.pos.Load()
	frames := int64(src.clip.Frames())
	filled := 0
	for filled < len(samples) {
		n := src.clip.Read(samples[filled:], int(pos))
		filled += n
		pos += int64(n)
		if filled == len(samples) {
			break
		}
		if d.looping.Load() && frames > 0 {
			pos = 0
			continue
		}
		clear(samples[filled:])
		d.playing.Store(false)
		break
	}

	d.pos.Store(pos)
	return len(samples), true
}

func (t *transport) Err() error {
	return nil
}
