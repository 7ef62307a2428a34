// Package noise adds zero-mean Gaussian noise to an already-rendered,
// already-filtered signal block, scaled to a fraction of that block's RMS.
// It models sensor/drive noise rather than excitation noise, which is why
// callers apply it after the resonator rather than before.
package noise

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/kgkgzrtk/yuragi-haptic-go/internal/haperr"
)

// DefaultLevel is the named tuning constant for callers that want "some"
// noise without picking a specific fraction. The reference implementation's
// _generate_1f_noise carried several undocumented empirical scale factors
// (0.3, 3.1, 0.7, 1.2); this package replaces all of them with the single,
// fully specified block-RMS-scaled model from the spec, so there is
// exactly one tuning knob.
const DefaultLevel = 0.03

// ErrInvalidParam is returned when level falls outside [0, 1]; it aliases
// the shared InvalidParam kind.
var ErrInvalidParam = haperr.InvalidParam

// Source is a per-channel Gaussian noise generator.
type Source struct {
	enabled bool
	level   float64 // lambda, fraction of block RMS
	rng     *rand.Rand
}

// New constructs a disabled noise source.
func New() *Source {
	return &Source{}
}

// Enabled reports whether ApplyInPlace currently has any effect.
func (s *Source) Enabled() bool { return s.enabled && s.level > 0 }

// Enable turns noise injection on at the given relative level. When seed
// is non-nil the generator is deterministic (reproducible test runs);
// otherwise it is seeded from the package-level math/rand source, so its
// sequence is not reproducible.
func (s *Source) Enable(level float64, seed *int64) error {
	if level < 0 || level > 1 {
		return errors.Wrap(ErrInvalidParam, "level must be within [0, 1]")
	}
	s.level = level
	if seed != nil {
		s.rng = rand.New(rand.NewSource(*seed))
	} else {
		s.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	s.enabled = true
	return nil
}

// Disable turns noise injection off.
func (s *Source) Disable() {
	s.enabled = false
}

// ApplyInPlace draws len(buf) standard-normal samples, scales them by
// level*rms(buf), and adds them to buf. It is a no-op when disabled or
// when level is zero, so callers may call it unconditionally.
func (s *Source) ApplyInPlace(buf []float32) {
	if !s.Enabled() || len(buf) == 0 {
		return
	}
	rms := blockRMS(buf)
	if rms == 0 {
		return
	}
	scale := float32(s.level) * rms
	for i := range buf {
		buf[i] += scale * float32(s.rng.NormFloat64())
	}
}

func blockRMS(buf []float32) float32 {
	var sumSq float64
	for _, v := range buf {
		sumSq += float64(v) * float64(v)
	}
	return float32(math.Sqrt(sumSq / float64(len(buf))))
}
