package yuragi

// Preset is the canonical set of parameters driving one animated
// actuator command sequence. Field names follow the data model's
// YURAGIPreset value exactly.
type Preset struct {
	InitialAngleDeg             float64
	Magnitude                   float64
	CarrierHz                   float64
	RotationHz                  float64
	EnvelopeHz                  float64
	EnvelopeDepth               float64
	EnableSpeedModulation       bool
	EnableAmplitudeCenterOffset bool
}

// DefaultPresetName is substituted for any unrecognized preset name.
const DefaultPresetName = "default"

// presets is the canonical table, grounded on
// original_source/backend/src/haptic_system/yuragi_animator.py::_initialize_presets.
// EnvelopeHz/EnvelopeDepth are uniformly 0.2/0.3 across every preset
// there: the YURAGIPresetConfig dataclass defaults envelope_freq=0.2,
// envelope_depth=0.3 and no preset but therapeutic_fluctuation overrides
// them (and that preset simply restates the same defaults), so those two
// fields are held constant here rather than varied per preset.
var presets = map[string]Preset{
	"default": {
		InitialAngleDeg: 0, Magnitude: 0.7, CarrierHz: 60, RotationHz: 0.33,
		EnvelopeHz: 0.2, EnvelopeDepth: 0.3,
	},
	"gentle": {
		InitialAngleDeg: 45, Magnitude: 0.4, CarrierHz: 40, RotationHz: 0.2,
		EnvelopeHz: 0.2, EnvelopeDepth: 0.3,
	},
	"moderate": {
		InitialAngleDeg: 0, Magnitude: 0.6, CarrierHz: 60, RotationHz: 0.33,
		EnvelopeHz: 0.2, EnvelopeDepth: 0.3,
	},
	"strong": {
		InitialAngleDeg: 90, Magnitude: 1.0, CarrierHz: 80, RotationHz: 0.5,
		EnvelopeHz: 0.2, EnvelopeDepth: 0.3,
	},
	"intense": {
		InitialAngleDeg: 90, Magnitude: 0.9, CarrierHz: 80, RotationHz: 0.5,
		EnvelopeHz: 0.2, EnvelopeDepth: 0.3,
	},
	"slow": {
		InitialAngleDeg: 180, Magnitude: 0.8, CarrierHz: 25, RotationHz: 0.15,
		EnvelopeHz: 0.2, EnvelopeDepth: 0.3,
	},
	"therapeutic": {
		InitialAngleDeg: 180, Magnitude: 0.5, CarrierHz: 50, RotationHz: 0.25,
		EnvelopeHz: 0.2, EnvelopeDepth: 0.3,
	},
	"therapeutic_fluctuation": {
		InitialAngleDeg: 180, Magnitude: 0.5, CarrierHz: 50, RotationHz: 0.15,
		EnvelopeHz: 0.2, EnvelopeDepth: 0.3,
		EnableSpeedModulation: true, EnableAmplitudeCenterOffset: true,
	},
}

// Lookup returns the named preset, or "default" when name is unrecognized.
func Lookup(name string) Preset {
	if p, ok := presets[name]; ok {
		return p
	}
	return presets[DefaultPresetName]
}

// Names returns the canonical preset names in display order, as listed by
// cmd/hapticctl's preset selector.
func Names() []string {
	return []string{
		"default", "gentle", "moderate", "strong", "intense",
		"slow", "therapeutic", "therapeutic_fluctuation",
	}
}
