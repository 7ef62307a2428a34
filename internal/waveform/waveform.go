// Package waveform generates the phase-continuous sawtooth carrier used to
// drive a single vibrotactile actuator axis.
//
// The generator is a pure function of absolute elapsed channel time, not a
// modulo sample counter: callers are responsible for tracking that time
// (see internal/channel) so that concatenated blocks stay phase-continuous
// across both block boundaries and frequency changes.
package waveform

import (
	"math"

	"github.com/pkg/errors"

	"github.com/kgkgzrtk/yuragi-haptic-go/internal/haperr"
)

// Frequency and amplitude bounds. MIN_FREQUENCY varies between 30Hz and
// 40Hz across revisions of the reference implementation; 30Hz is pinned
// here as the single compile-time source of truth, used everywhere a
// frequency is validated.
const (
	MinFrequency = 30.0
	MaxFrequency = 120.0
	MinAmplitude = 0.0
	MaxAmplitude = 1.0
)

// Polarity selects which edge of the sawtooth carries the fast transient.
type Polarity bool

const (
	Falling Polarity = false
	Rising  Polarity = true
)

// ErrInvalidParam is returned when a frequency or amplitude falls outside
// its declared bounds. It is the waveform package's alias for the shared
// InvalidParam error kind, so callers can test with errors.Is(err,
// haperr.InvalidParam) regardless of which package produced the error.
var ErrInvalidParam = haperr.InvalidParam

// ValidateFrequency reports whether freqHz lies within [MinFrequency, MaxFrequency].
func ValidateFrequency(freqHz float64) error {
	if freqHz < MinFrequency || freqHz > MaxFrequency {
		return errors.Wrapf(ErrInvalidParam, "frequency %gHz outside [%g, %g]", freqHz, MinFrequency, MaxFrequency)
	}
	return nil
}

// ValidateAmplitude reports whether amplitude lies within [0, 1].
func ValidateAmplitude(amplitude float32) error {
	if amplitude < MinAmplitude || amplitude > MaxAmplitude {
		return errors.Wrapf(ErrInvalidParam, "amplitude %g outside [%g, %g]", amplitude, MinAmplitude, MaxAmplitude)
	}
	return nil
}

// Render validates frequency and amplitude, then returns a freshly
// allocated block of n samples. It is the validating entry point for
// callers holding unchecked parameters; the per-block audio hot path and
// the waveform snapshot path (via internal/channel) use RenderInto against
// pre-validated parameters instead, so they never pay the validation cost
// on every block.
func Render(freqHz, startTimeS float64, n int, sampleRate float64, amplitude float32, phaseDeg float64, polarity Polarity) ([]float32, error) {
	if err := ValidateFrequency(freqHz); err != nil {
		return nil, err
	}
	if err := ValidateAmplitude(amplitude); err != nil {
		return nil, err
	}
	buf := make([]float32, n)
	RenderInto(buf, freqHz, startTimeS, sampleRate, amplitude, phaseDeg, polarity)
	return buf, nil
}

// RenderInto fills buf (len(buf) samples) with a sawtooth carrier starting
// at absolute elapsed time startTimeS. It performs no validation and no
// allocation, and is safe to call once per audio callback.
//
// Per sample k: s = 2*frac(freq*(startTimeS+k/sr) + phaseDeg/360) - 1,
// emitted as amplitude*s for a rising edge or -amplitude*s for a falling
// one.
func RenderInto(buf []float32, freqHz, startTimeS float64, sampleRate float64, amplitude float32, phaseDeg float64, polarity Polarity) {
	phaseOffset := phaseDeg / 360.0
	invSR := 1.0 / sampleRate
	for k := range buf {
		t := startTimeS + float64(k)*invSR
		frac := freqHz*t + phaseOffset
		frac -= math.Floor(frac)
		s := float32(2*frac - 1)
		if polarity == Rising {
			buf[k] = amplitude * s
		} else {
			buf[k] = -amplitude * s
		}
	}
}
