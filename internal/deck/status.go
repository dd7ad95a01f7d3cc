package deck

import (
	"github.com/satindergrewal/deckmix/internal/library"
	"github.com/satindergrewal/deckmix/internal/reverb"
)

// Status is a point-in-time view of a deck for display.
type Status struct {
	Name             string         `json:"name"`
	State            State          `json:"state"`
	Track            *library.Track `json:"track,omitempty"`
	Position         float64        `json:"position"`
	Duration         float64        `json:"duration"`
	PositionRelative *float64       `json:"position_relative,omitempty"`
	Gain             float64        `json:"gain"`
	Speed            float64        `json:"speed"`
	Looping          bool           `json:"looping"`
	Reverb           reverb.Params  `json:"reverb"`
}

// Status snapshots the deck. Fields are read independently, so a status
// taken during a load may mix old and new values.
func (d *Deck) Status() Status {
	s := Status{
		Name:     d.name,
		State:    d.State(),
		Track:    d.LoadedTrack(),
		Position: d.Position(),
		Duration: d.Duration(),
		Gain:     d.Gain(),
		Speed:    d.Speed(),
		Looping:  d.Looping(),
		Reverb:   d.ReverbParams(),
	}
	if rel, err := d.PositionRelative(); err == nil {
		s.PositionRelative = &rel
	}
	return s
}
