// Package channel owns a single vibrotactile drive signal: the chain of
// phase accumulator -> sawtooth -> resonator -> noise described by the
// synthesis core. A Channel is not safe for concurrent use; callers
// (internal/device, internal/hapticctrl) serialize access with their own
// mutex, matching the single-writer/audio-reader discipline of the whole
// synthesis pipeline.
package channel

import (
	"github.com/pkg/errors"

	"github.com/kgkgzrtk/yuragi-haptic-go/internal/haperr"
	"github.com/kgkgzrtk/yuragi-haptic-go/internal/noise"
	"github.com/kgkgzrtk/yuragi-haptic-go/internal/resonator"
	"github.com/kgkgzrtk/yuragi-haptic-go/internal/waveform"
)

const (
	MinID = 0
	MaxID = 3
)

// ErrInvalidParam covers out-of-range channel ids and parameter values; it
// aliases the shared InvalidParam kind.
var ErrInvalidParam = haperr.InvalidParam

// Params is a snapshot of a channel's current, validated parameters.
type Params struct {
	FrequencyHz float64
	Amplitude   float32
	PhaseDeg    float64
	Polarity    waveform.Polarity
	Active      bool
}

// Update carries a partial parameter change: nil fields are left
// untouched. This mirrors the control-plane's optional-field update
// shape (see internal/controlplane) so that a batch update can be
// validated in full before any field is applied.
type Update struct {
	FrequencyHz *float64
	Amplitude   *float32
	PhaseDeg    *float64
	Polarity    *waveform.Polarity
}

// Validate checks the provided fields of u against waveform bounds
// without applying them. Channel.SetParams calls this internally, but
// batch callers (Controller.UpdateParameters) call it up front across an
// entire batch before acquiring the lock, satisfying the "validate the
// whole batch, then apply atomically" policy.
func (u Update) Validate() error {
	if u.FrequencyHz != nil {
		if err := waveform.ValidateFrequency(*u.FrequencyHz); err != nil {
			return err
		}
	}
	if u.Amplitude != nil {
		if err := waveform.ValidateAmplitude(*u.Amplitude); err != nil {
			return err
		}
	}
	return nil
}

// Channel owns one {phase accumulator, sawtooth, resonator, noise} chain.
type Channel struct {
	id         int
	sampleRate float64

	params Params
	tau    float64 // cumulative elapsed seconds; the sole phase source

	resonator *resonator.Resonator
	noise     *noise.Source
}

// New constructs a channel with the given id (0-3) at sampleRate. The
// channel starts inactive with zero amplitude.
func New(id int, sampleRate float64) (*Channel, error) {
	if id < MinID || id > MaxID {
		return nil, errors.Wrapf(ErrInvalidParam, "channel id %d outside [%d, %d]", id, MinID, MaxID)
	}
	res, err := resonator.New(sampleRate)
	if err != nil {
		return nil, err
	}
	return &Channel{
		id:         id,
		sampleRate: sampleRate,
		params: Params{
			FrequencyHz: waveform.MinFrequency,
			Amplitude:   0,
			PhaseDeg:    0,
			Polarity:    waveform.Rising,
			Active:      false,
		},
		resonator: res,
		noise:     noise.New(),
	}, nil
}

// ID returns the channel's fixed identifier (0-3).
func (c *Channel) ID() int { return c.id }

// SetParams overwrites the provided fields, validating bounds before
// applying any of them.
func (c *Channel) SetParams(u Update) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if u.FrequencyHz != nil {
		c.params.FrequencyHz = *u.FrequencyHz
	}
	if u.Amplitude != nil {
		c.params.Amplitude = *u.Amplitude
	}
	if u.PhaseDeg != nil {
		c.params.PhaseDeg = *u.PhaseDeg
	}
	if u.Polarity != nil {
		c.params.Polarity = *u.Polarity
	}
	return nil
}

// Activate flips the channel's active flag on.
func (c *Channel) Activate() { c.params.Active = true }

// Deactivate flips the channel's active flag off.
func (c *Channel) Deactivate() { c.params.Active = false }

// EnableResonator turns on the 2nd-order IIR shaping stage.
func (c *Channel) EnableResonator(naturalFreqHz, damping float64) error {
	return c.resonator.Enable(naturalFreqHz, damping)
}

// DisableResonator turns off the shaping stage; history is preserved.
func (c *Channel) DisableResonator() { c.resonator.Disable() }

// EnableNoise turns on post-resonator Gaussian noise injection.
func (c *Channel) EnableNoise(level float64, seed *int64) error {
	return c.noise.Enable(level, seed)
}

// DisableNoise turns off noise injection.
func (c *Channel) DisableNoise() { c.noise.Disable() }

// Snapshot returns the channel's current parameters by value.
func (c *Channel) Snapshot() Params { return c.params }

// Render fills buf with the next len(buf) samples and advances tau by
// len(buf)/sampleRate. If the channel is inactive or has zero amplitude,
// buf is zeroed but tau still advances, so reactivation never produces a
// phase discontinuity.
func (c *Channel) Render(buf []float32) {
	n := len(buf)
	if !c.params.Active || c.params.Amplitude == 0 {
		for i := range buf {
			buf[i] = 0
		}
		c.tau += float64(n) / c.sampleRate
		return
	}

	waveform.RenderInto(buf, c.params.FrequencyHz, c.tau, c.sampleRate, c.params.Amplitude, c.params.PhaseDeg, c.params.Polarity)
	if c.resonator.Enabled() {
		c.resonator.ProcessInto(buf)
	}
	if c.noise.Enabled() {
		c.noise.ApplyInPlace(buf)
	}
	c.tau += float64(n) / c.sampleRate
}

// PeekBlock renders n samples from the channel's current state: tau does
// not advance and resonator history is left untouched, though enabled
// noise still draws from the live generator. It exists so POST /waveform (a snapshot read) does not
// couple to playback phase the way the reference implementation's
// get_waveform_data -> get_next_chunk path did.
func (c *Channel) PeekBlock(n int) []float32 {
	buf := make([]float32, n)
	if !c.params.Active || c.params.Amplitude == 0 {
		return buf
	}
	waveform.RenderInto(buf, c.params.FrequencyHz, c.tau, c.sampleRate, c.params.Amplitude, c.params.PhaseDeg, c.params.Polarity)

	if c.resonator.Enabled() {
		shadow := *c.resonator
		shadow.ProcessInto(buf)
	}
	if c.noise.Enabled() {
		// Draws from the live noise stream; a peek still consumes
		// randomness, it just never advances tau or resonator history.
		c.noise.ApplyInPlace(buf)
	}
	return buf
}
