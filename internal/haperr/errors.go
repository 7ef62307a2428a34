// Package haperr collects the sentinel error kinds shared across the
// synthesis core and its control-plane boundary, so a caller can test for
// a kind with errors.Is regardless of which package actually returned it.
package haperr

import "github.com/pkg/errors"

var (
	// InvalidParam: a value fell outside its declared bounds (frequency,
	// amplitude, channel id, actuator id, preset name, direction index).
	InvalidParam = errors.New("invalid parameter")

	// ModeDisabled: a discrete-direction operation was attempted while
	// 16-direction mode is off.
	ModeDisabled = errors.New("mode disabled")

	// AudioUnavailable: no suitable output device was found, or the host
	// rejected the requested stream configuration.
	AudioUnavailable = errors.New("audio unavailable")

	// NotReady: the operation requires streaming to be active.
	NotReady = errors.New("not ready")

	// Cancelled: an animation task was terminated by Stop.
	Cancelled = errors.New("cancelled")
)
