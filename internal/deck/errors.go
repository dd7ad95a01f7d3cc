package deck

import "errors"

var (
	// ErrInvalidParameter is returned when a setter's value is out of range.
	// The deck is left unchanged.
	ErrInvalidParameter = errors.New("deck: invalid parameter")

	// ErrSourceUnreadable is returned when a file cannot be decoded.
	ErrSourceUnreadable = errors.New("deck: source unreadable")

	// ErrUnknownDuration is returned by relative position queries when no
	// source is loaded or the source has no frames.
	ErrUnknownDuration = errors.New("deck: unknown duration")
)
