// Package device composes the four fixed Channels into the two logical
// actuators, decomposing angle/magnitude commands into per-axis polarized
// amplitudes and interleaving channel blocks into the audio frame the
// controller hands to the host.
package device

import (
	"math"

	"github.com/pkg/errors"

	"github.com/kgkgzrtk/yuragi-haptic-go/internal/channel"
	"github.com/kgkgzrtk/yuragi-haptic-go/internal/haperr"
	"github.com/kgkgzrtk/yuragi-haptic-go/internal/waveform"
)

const (
	// NumChannels is the fixed number of drive channels: (0,1) for
	// actuator 1, (2,3) for actuator 2.
	NumChannels = 4

	// NumDirections and DirectionStepDeg describe the optional
	// 16-direction discrete mode.
	NumDirections    = 16
	DirectionStepDeg = 360.0 / NumDirections
)

// ErrInvalidActuator is returned when actuator is not 1 or 2; it aliases
// the shared InvalidParam kind.
var ErrInvalidActuator = haperr.InvalidParam

// ErrModeDisabled is returned by SetDiscreteDirection when 16-direction
// mode has not been enabled; it aliases the shared ModeDisabled kind.
var ErrModeDisabled = haperr.ModeDisabled

// ErrInvalidParam is returned for an out-of-range direction index; it
// aliases the shared InvalidParam kind.
var ErrInvalidParam = haperr.InvalidParam

// Device owns the fixed 4-tuple of Channels.
type Device struct {
	sampleRate float64
	channels   [NumChannels]*channel.Channel

	discreteModeEnabled bool
	mirrorActuator2     bool

	scratch [NumChannels][]float32 // pre-allocated by PrepareScratch, reused every ComposeBlock
}

// New constructs a Device with four fresh Channels at sampleRate.
func New(sampleRate float64) (*Device, error) {
	d := &Device{sampleRate: sampleRate}
	for i := 0; i < NumChannels; i++ {
		ch, err := channel.New(i, sampleRate)
		if err != nil {
			return nil, err
		}
		d.channels[i] = ch
	}
	return d, nil
}

// Channel returns the channel for id (0-3).
func (d *Device) Channel(id int) (*channel.Channel, error) {
	if id < channel.MinID || id > channel.MaxID {
		return nil, errors.Wrapf(channel.ErrInvalidParam, "channel id %d outside [%d, %d]", id, channel.MinID, channel.MaxID)
	}
	return d.channels[id], nil
}

// SetChannelParams delegates a partial parameter update to one channel.
func (d *Device) SetChannelParams(id int, u channel.Update) error {
	ch, err := d.Channel(id)
	if err != nil {
		return err
	}
	return ch.SetParams(u)
}

// SetActuatorMirror chooses, per actuator, whether SetVectorForce mirrors
// its angle (theta -> -theta). The canonical, default policy is
// non-mirrored for both actuators; some revisions of the reference
// implementation mirror actuator 2 so a single command rotates both
// actuators in symmetric rather than matching directions. Only actuator 2
// supports mirroring here, matching that observed variant.
func (d *Device) SetActuatorMirror(actuator int, mirrored bool) error {
	if actuator != 2 {
		return errors.Wrapf(ErrInvalidActuator, "mirroring is only configurable for actuator 2, got %d", actuator)
	}
	d.mirrorActuator2 = mirrored
	return nil
}

// SetVectorForce decomposes an angle/magnitude/frequency command into
// polarized per-axis amplitudes for one actuator and activates both of
// its channels.
//
// x = magnitude*cos(theta); y = -magnitude*sin(theta) (Y inversion
// matches the physical mounting of the Y actuator; binding, not
// optional). Actuator 2's angle is mirrored (theta -> -theta) only when
// SetActuatorMirror(2, true) has been called.
func (d *Device) SetVectorForce(actuator int, angleDeg, magnitude, freqHz float64) error {
	base, err := actuatorBase(actuator)
	if err != nil {
		return err
	}

	theta := angleDeg * math.Pi / 180.0
	if actuator == 2 && d.mirrorActuator2 {
		theta = -theta
	}

	x := magnitude * math.Cos(theta)
	y := -magnitude * math.Sin(theta)

	xFreq, yFreq := freqHz, freqHz
	xAmp := float32(math.Abs(x))
	yAmp := float32(math.Abs(y))
	xPolarity := waveform.Polarity(x >= 0)
	yPolarity := waveform.Polarity(y >= 0)
	phase := 0.0

	if err := d.channels[base].SetParams(channel.Update{
		FrequencyHz: &xFreq,
		Amplitude:   &xAmp,
		PhaseDeg:    &phase,
		Polarity:    &xPolarity,
	}); err != nil {
		return err
	}
	if err := d.channels[base+1].SetParams(channel.Update{
		FrequencyHz: &yFreq,
		Amplitude:   &yAmp,
		PhaseDeg:    &phase,
		Polarity:    &yPolarity,
	}); err != nil {
		return err
	}

	d.channels[base].Activate()
	d.channels[base+1].Activate()
	return nil
}

// EnableDiscreteMode turns on the 16-direction discrete mode.
func (d *Device) EnableDiscreteMode() { d.discreteModeEnabled = true }

// DisableDiscreteMode turns off the 16-direction discrete mode.
func (d *Device) DisableDiscreteMode() { d.discreteModeEnabled = false }

// DiscreteModeEnabled reports whether 16-direction mode is active.
func (d *Device) DiscreteModeEnabled() bool { return d.discreteModeEnabled }

// SetDiscreteDirection maps a direction index in [0, 16) to an angle of
// idx*22.5 degrees and delegates to SetVectorForce. Fails with
// ErrModeDisabled outside discrete mode.
func (d *Device) SetDiscreteDirection(actuator, idx int, magnitude, freqHz float64) error {
	if !d.discreteModeEnabled {
		return ErrModeDisabled
	}
	if idx < 0 || idx >= NumDirections {
		return errors.Wrapf(ErrInvalidParam, "direction index %d outside [0, %d)", idx, NumDirections)
	}
	angle := float64(idx) * DirectionStepDeg
	return d.SetVectorForce(actuator, angle, magnitude, freqHz)
}

// PrepareScratch pre-allocates the per-channel render buffers ComposeBlock
// reuses on every call, sized to blockSize frames. Call once before
// streaming begins so the audio callback never allocates.
func (d *Device) PrepareScratch(blockSize int) {
	for i := range d.scratch {
		d.scratch[i] = make([]float32, blockSize)
	}
}

// ComposeBlock renders all four channels and interleaves them into buf as
// [ch0, ch1, ch2, ch3, ch0, ...]. len(buf) must equal n*NumChannels.
// Channels beyond availableChannels (2 or 4) are zero-filled, modelling a
// 2-channel device that can only drive actuator 1.
func (d *Device) ComposeBlock(buf []float32, n int, availableChannels int) {
	for i := 0; i < NumChannels; i++ {
		if cap(d.scratch[i]) < n {
			d.scratch[i] = make([]float32, n)
		}
		scratch := d.scratch[i][:n]
		// Render unconditionally so every channel's tau advances even
		// when its output is discarded below; a later mode switch back
		// to 4 channels must not glitch on a stale phase.
		d.channels[i].Render(scratch)
		if i >= availableChannels {
			for k := range scratch {
				scratch[k] = 0
			}
		}
		d.scratch[i] = scratch
	}
	for k := 0; k < n; k++ {
		for ch := 0; ch < NumChannels; ch++ {
			buf[k*NumChannels+ch] = d.scratch[ch][k]
		}
	}
}

// ActivateAll activates every channel.
func (d *Device) ActivateAll() {
	for _, ch := range d.channels {
		ch.Activate()
	}
}

// DeactivateAll deactivates every channel.
func (d *Device) DeactivateAll() {
	for _, ch := range d.channels {
		ch.Deactivate()
	}
}

// Snapshot returns the current parameters of all four channels in order.
func (d *Device) Snapshot() [NumChannels]channel.Params {
	var out [NumChannels]channel.Params
	for i, ch := range d.channels {
		out[i] = ch.Snapshot()
	}
	return out
}

// PeekWaveform renders n samples from each channel's current state
// without mutating playback phase, for one-shot waveform snapshots.
func (d *Device) PeekWaveform(n int) [NumChannels][]float32 {
	var out [NumChannels][]float32
	for i, ch := range d.channels {
		out[i] = ch.PeekBlock(n)
	}
	return out
}

// DiscreteDirections returns the fixed table of 16 direction angles.
func DiscreteDirections() [NumDirections]float64 {
	var out [NumDirections]float64
	for i := range out {
		out[i] = float64(i) * DirectionStepDeg
	}
	return out
}

func actuatorBase(actuator int) (int, error) {
	if actuator != 1 && actuator != 2 {
		return 0, errors.Wrapf(ErrInvalidActuator, "actuator must be 1 or 2, got %d", actuator)
	}
	return (actuator - 1) * 2, nil
}
