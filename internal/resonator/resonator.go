// Package resonator implements the 2nd-order IIR filter that shapes the
// sawtooth carrier to the mechanical resonance of a vibrotactile actuator.
//
// The discrete filter is derived from the continuous transfer function
// G(s) = wn^2 / (s^2 + 2*zeta*wn*s + wn^2) by the bilinear (Tustin)
// transform, matching original_source/backend/src/haptic_system/
// waveform.py::resonator. Unlike that reference, which recomputes an
// entire output array from zeroed history on every call, this type
// persists its two-sample history across Process calls so that retuning
// fn or zeta never discontinues the output.
package resonator

import (
	"math"

	"github.com/pkg/errors"

	"github.com/kgkgzrtk/yuragi-haptic-go/internal/haperr"
)

// Default natural frequency and damping ratio, per the data model.
const (
	DefaultNaturalFrequencyHz = 360.0
	DefaultDamping            = 0.08
)

// ErrInvalidParam is returned for a non-positive sample rate, natural
// frequency, or damping ratio; it aliases the shared InvalidParam kind.
var ErrInvalidParam = haperr.InvalidParam

// Resonator is a stateful, per-channel direct-form-I biquad. The zero
// value is not usable; construct with New.
type Resonator struct {
	sampleRate    float64
	naturalFreqHz float64
	damping       float64
	enabled       bool

	a1, a2 float64
	b0, b1, b2 float64

	u1, u2 float64 // u[n-1], u[n-2]
	y1, y2 float64 // y[n-1], y[n-2]
}

// New constructs a disabled resonator at the given sample rate using the
// default natural frequency and damping. Coefficients are precomputed for
// those defaults; Enable recomputes them for whatever values it is given.
func New(sampleRate float64) (*Resonator, error) {
	if sampleRate <= 0 {
		return nil, errors.Wrap(ErrInvalidParam, "sample rate must be positive")
	}
	r := &Resonator{sampleRate: sampleRate}
	r.naturalFreqHz = DefaultNaturalFrequencyHz
	r.damping = DefaultDamping
	r.recomputeCoefficients()
	return r, nil
}

// Enabled reports whether the resonator is currently applied by Process.
func (r *Resonator) Enabled() bool { return r.enabled }

// Enable turns filtering on (recomputing coefficients if fn or zeta are
// provided) without touching the persisted history.
func (r *Resonator) Enable(naturalFreqHz, damping float64) error {
	if err := r.SetParams(naturalFreqHz, damping); err != nil {
		return err
	}
	r.enabled = true
	return nil
}

// Disable turns filtering off. History is preserved so re-enabling does
// not discontinue the signal.
func (r *Resonator) Disable() { r.enabled = false }

// SetParams recomputes the filter coefficients for a new natural
// frequency and damping ratio. History (u[n-1], u[n-2], y[n-1], y[n-2])
// is never reset by this call.
func (r *Resonator) SetParams(naturalFreqHz, damping float64) error {
	if naturalFreqHz <= 0 {
		return errors.Wrap(ErrInvalidParam, "natural frequency must be positive")
	}
	if damping <= 0 {
		return errors.Wrap(ErrInvalidParam, "damping ratio must be positive")
	}
	r.naturalFreqHz = naturalFreqHz
	r.damping = damping
	r.recomputeCoefficients()
	return nil
}

// Reset zeroes the filter history, restoring the known initial condition
// of a freshly constructed resonator; the audio hot path never calls it.
func (r *Resonator) Reset() {
	r.u1, r.u2, r.y1, r.y2 = 0, 0, 0, 0
}

func (r *Resonator) recomputeCoefficients() {
	wn := 2 * math.Pi * r.naturalFreqHz
	dt := 1.0 / r.sampleRate
	wnDt := wn * dt
	wnDt2 := wnDt * wnDt

	a0 := 4 + 4*r.damping*wnDt + wnDt2
	b0 := wnDt2
	b1 := 2 * b0
	b2 := b0
	a1 := 2 * (wnDt2 - 4)
	a2 := 4 - 4*r.damping*wnDt + wnDt2

	r.b0, r.b1, r.b2 = b0/a0, b1/a0, b2/a0
	r.a1, r.a2 = a1/a0, a2/a0
}

// ProcessSample filters a single input sample, advancing history.
func (r *Resonator) ProcessSample(u float32) float32 {
	uf := float64(u)
	y := r.b0*uf + r.b1*r.u1 + r.b2*r.u2 - r.a1*r.y1 - r.a2*r.y2
	r.u2, r.u1 = r.u1, uf
	r.y2, r.y1 = r.y1, y
	return float32(y)
}

// ProcessInto filters buf in place. No-op (returns immediately) when the
// resonator is disabled, so callers may call it unconditionally with
// "apply if enabled" semantics; Channel also checks Enabled itself before
// calling.
func (r *Resonator) ProcessInto(buf []float32) {
	if !r.enabled {
		return
	}
	for i, u := range buf {
		buf[i] = r.ProcessSample(u)
	}
}

// Q returns the resonator's quality factor, 1/(2*zeta).
func (r *Resonator) Q() float64 {
	return 1.0 / (2.0 * r.damping)
}
