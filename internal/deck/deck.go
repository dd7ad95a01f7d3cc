// Package deck implements a single playback deck: a decoded source pulled
// through transport, resampler and reverb stages into an output block.
//
// Control methods (Load, Start, the setters) may be called from any goroutine.
// Stream is the real-time entry point; it takes no locks, does no I/O and does
// not allocate. Everything the two sides share is published through atomics.
package deck

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep/v2"
	"go.uber.org/zap"

	"github.com/satindergrewal/deckmix/internal/audio"
	"github.com/satindergrewal/deckmix/internal/decode"
	"github.com/satindergrewal/deckmix/internal/library"
	"github.com/satindergrewal/deckmix/internal/reverb"
)

// State is the deck's play state.
type State int

const (
	Stopped State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "stopped"
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

const (
	MaxSpeed       = 10.0
	defaultQuality = 4
	noSeek         = int64(-1)

	// seeks further than this many frames are all past the end of any clip
	maxSeekFrames = float64(1 << 53)
)

// Options tune a deck.
type Options struct {
	// ResampleQuality is the beep resampler quality, 1-64.
	ResampleQuality int
	BalanceMode     BalanceMode
}

type source struct {
	clip  *decode.Clip
	track *library.Track
}

// stage is what the audio goroutine plays: a source, the frame to start it
// from and a fresh resampler. A new one is published on every load and seek,
// so the source, position and dropped resampler buffer change together.
// ratio is touched only by Stream.
type stage struct {
	src   *source
	start int64
	r     *beep.Resampler
	ratio float64
}

// Deck is one playback channel.
type Deck struct {
	name    string
	decoder decode.Decoder
	opts    Options
	log     *zap.Logger

	src     atomic.Pointer[source]
	stage   atomic.Pointer[stage]
	playing atomic.Bool
	looping atomic.Bool
	gain    atomicFloat
	speed   atomicFloat
	pos     atomic.Int64
	seek    atomic.Int64

	transport *transport
	reverb    *reverb.Reverb

	// audio goroutine only
	cur      *stage
	lastGain float64

	// serialises control-side read-modify-write
	mu sync.Mutex
}

// New creates a stopped, empty deck at unity gain and speed with a dry reverb.
func New(name string, dec decode.Decoder, opts Options, log *zap.Logger) *Deck {
	if opts.ResampleQuality <= 0 {
		opts.ResampleQuality = defaultQuality
	}
	opts.ResampleQuality = min(opts.ResampleQuality, 64)

	d := &Deck{
		name:     name,
		decoder:  dec,
		opts:     opts,
		log:      log,
		lastGain: 1,
	}
	d.gain.Store(1)
	d.speed.Store(1)
	d.seek.Store(noSeek)
	d.transport = &transport{d: d}
	d.reverb = reverb.New(resampled{d}, audio.SampleRate)
	d.stage.Store(d.newStage(nil, 0))

	if opts.BalanceMode == BalanceCumulative {
		log.Warn("reverb balance uses cumulative adjustment; repeated calls compound")
	}
	return d
}

func (d *Deck) newStage(src *source, start int64) *stage {
	ratio := d.speed.Load()
	if ratio <= 0 {
		ratio = 1
	}
	return &stage{
		src:   src,
		start: start,
		r:     beep.ResampleRatio(d.opts.ResampleQuality, ratio, d.transport),
		ratio: ratio,
	}
}

// Name returns the deck's name.
func (d *Deck) Name() string {
	return d.name
}

// Load decodes path and makes it the deck's source. The deck stops and
// rewinds. On failure nothing changes.
func (d *Deck) Load(path string) error {
	return d.load(path, nil)
}

// LoadTrack is Load for a library track; the track is kept as LoadedTrack.
func (d *Deck) LoadTrack(t *library.Track) error {
	return d.load(t.FilePath, t)
}

func (d *Deck) load(path string, t *library.Track) error {
	clip, err := d.decoder.Decode(path)
	if err != nil {
		d.log.Error("load failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %s: %w", ErrSourceUnreadable, path, err)
	}
	if t == nil {
		t = library.NewTrack(path, clip.Duration())
	}

	src := &source{clip: clip, track: t}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.playing.Store(false)
	d.seek.Store(0)
	d.src.Store(src)
	d.stage.Store(d.newStage(src, 0))

	d.log.Info("track loaded",
		zap.String("title", t.Title),
		zap.Int("frames", clip.Frames()),
		zap.Duration("duration", clip.Duration()))
	return nil
}

// LoadedTrack returns the last successfully loaded track, or nil.
func (d *Deck) LoadedTrack() *library.Track {
	if s := d.src.Load(); s != nil {
		return s.track
	}
	return nil
}

// Start begins playback. Starting a playing deck is a no-op.
func (d *Deck) Start() {
	if !d.playing.Swap(true) {
		d.log.Debug("start")
	}
}

// Stop halts playback, keeping the position. Stopping a stopped deck is a no-op.
func (d *Deck) Stop() {
	if d.playing.Swap(false) {
		d.log.Debug("stop")
	}
}

// State returns the current play state.
func (d *Deck) State() State {
	if d.playing.Load() {
		return Playing
	}
	return Stopped
}

func (d *Deck) reject(param string, v float64) error {
	d.log.Warn("rejected parameter", zap.String("param", param), zap.Float64("value", v))
	return fmt.Errorf("%w: %s %v", ErrInvalidParameter, param, v)
}

func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// SetGain sets the output gain. g must be in [0, 1].
func (d *Deck) SetGain(g float64) error {
	if !inRange(g, 0, 1) {
		return d.reject("gain", g)
	}
	d.gain.Store(g)
	return nil
}

// Gain returns the output gain.
func (d *Deck) Gain() float64 {
	return d.gain.Load()
}

// SetSpeed sets the playback speed ratio. r must be in [0, MaxSpeed]; 0
// holds the transport. The change lands on the next block.
func (d *Deck) SetSpeed(r float64) error {
	if !inRange(r, 0, MaxSpeed) {
		return d.reject("speed", r)
	}
	d.speed.Store(r)
	return nil
}

// Speed returns the playback speed ratio.
func (d *Deck) Speed() float64 {
	return d.speed.Load()
}

// SetPosition seeks to seconds from the start. Positions past the end are
// accepted and behave like reaching the end.
func (d *Deck) SetPosition(seconds float64) error {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return d.reject("position", seconds)
	}
	frames := int64(min(seconds*audio.SampleRate, maxSeekFrames))

	d.mu.Lock()
	defer d.mu.Unlock()
	d.seek.Store(frames)
	d.stage.Store(d.newStage(d.src.Load(), frames))
	return nil
}

// SetPositionRelative seeks to frac of the loaded source's duration.
func (d *Deck) SetPositionRelative(frac float64) error {
	if !inRange(frac, 0, 1) {
		return d.reject("relative position", frac)
	}
	dur := d.Duration()
	if dur == 0 {
		return ErrUnknownDuration
	}
	return d.SetPosition(frac * dur)
}

// Position returns the playback position in seconds. A seek not yet picked
// up by Stream reports its target.
func (d *Deck) Position() float64 {
	frames := d.seek.Load()
	if frames == noSeek {
		frames = d.pos.Load()
	}
	return float64(frames) / audio.SampleRate
}

// Duration returns the loaded source's length in seconds, or 0.
func (d *Deck) Duration() float64 {
	s := d.src.Load()
	if s == nil {
		return 0
	}
	return float64(s.clip.Frames()) / audio.SampleRate
}

// PositionRelative returns Position/Duration. It fails with
// ErrUnknownDuration when nothing is loaded or the source is empty.
func (d *Deck) PositionRelative() (float64, error) {
	dur := d.Duration()
	if dur == 0 {
		return 0, ErrUnknownDuration
	}
	return d.Position() / dur, nil
}

// SetLoop makes the deck rewind to the start at the end of the source.
func (d *Deck) SetLoop() {
	d.looping.Store(true)
}

// UnsetLoop makes the deck stop at the end of the source.
func (d *Deck) UnsetLoop() {
	d.looping.Store(false)
}

// Looping reports whether looping is on.
func (d *Deck) Looping() bool {
	return d.looping.Load()
}

// ReverbUpdate carries optional reverb controls, each in [0, 1]. Nil fields
// are left as they are.
type ReverbUpdate struct {
	Balance  *float64
	Damping  *float64
	RoomSize *float64
}

// UpdateReverb checks every present control, then applies them together. A
// rejected control leaves all reverb parameters unchanged.
func (d *Deck) UpdateReverb(u ReverbUpdate) error {
	for _, c := range []struct {
		name string
		v    *float64
	}{
		{"reverb balance", u.Balance},
		{"reverb damping", u.Damping},
		{"reverb room size", u.RoomSize},
	} {
		if c.v != nil && !inRange(*c.v, 0, 1) {
			return d.reject(c.name, *c.v)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	p := d.reverb.Params()
	if u.Balance != nil {
		p = applyBalance(p, *u.Balance, d.opts.BalanceMode)
	}
	if u.Damping != nil {
		p.Damping = *u.Damping
	}
	if u.RoomSize != nil {
		p.RoomSize = *u.RoomSize
	}
	d.reverb.SetParams(p)
	return nil
}

// SetReverbBalance crossfades between dry and wet; b must be in [0, 1].
func (d *Deck) SetReverbBalance(b float64) error {
	return d.UpdateReverb(ReverbUpdate{Balance: &b})
}

// SetReverbDamping sets high-frequency damping; v must be in [0, 1].
func (d *Deck) SetReverbDamping(v float64) error {
	return d.UpdateReverb(ReverbUpdate{Damping: &v})
}

// SetReverbRoomSize sets the room size; v must be in [0, 1].
func (d *Deck) SetReverbRoomSize(v float64) error {
	return d.UpdateReverb(ReverbUpdate{RoomSize: &v})
}

// ReverbParams returns the current reverb parameters.
func (d *Deck) ReverbParams() reverb.Params {
	return d.reverb.Params()
}

// Stream implements beep.Streamer. It always fills samples and never ends;
// an empty, stopped or exhausted deck yields silence.
func (d *Deck) Stream(samples [][2]float64) (int, bool) {
	st := d.stage.Load()
	if st != d.cur {
		d.enter(st)
	}

	speed := d.speed.Load()
	if !d.playing.Load() || st.src == nil || speed == 0 {
		clear(samples)
		return len(samples), true
	}

	if st.ratio != speed {
		st.r.SetRatio(speed)
		st.ratio = speed
	}
	d.reverb.Stream(samples)

	g := d.gain.Load()
	audio.ApplyGain(samples, d.lastGain, g)
	d.lastGain = g
	return len(samples), true
}

// enter switches the audio goroutine to st. A new source starts with empty
// reverb delay lines.
func (d *Deck) enter(st *stage) {
	if d.cur != nil && d.cur.src != st.src {
		d.reverb.Reset()
	}
	d.cur = st
	d.pos.Store(st.start)
	d.seek.CompareAndSwap(st.start, noSeek)
}

// Err implements beep.Streamer.
func (d *Deck) Err() error {
	return nil
}

// resampled feeds the reverb from the current stage's resampler.
type resampled struct {
	d *Deck
}

func (r resampled) Stream(samples [][2]float64) (int, bool) {
	return r.d.cur.r.Stream(samples)
}

func (r resampled) Err() error {
	return nil
}

type atomicFloat struct {
	bits atomic.Uint64
}

func (f *atomicFloat) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

func (f *atomicFloat) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}
