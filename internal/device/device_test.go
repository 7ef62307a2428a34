package device

import (
	"math"
	"testing"

	"github.com/kgkgzrtk/yuragi-haptic-go/internal/waveform"
)

func TestNewCreatesFourChannels(t *testing.T) {
	d, err := New(48000)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < NumChannels; i++ {
		ch, err := d.Channel(i)
		if err != nil {
			t.Fatalf("channel %d: %v", i, err)
		}
		if ch.ID() != i {
			t.Fatalf("channel %d has id %d", i, ch.ID())
		}
	}
}

func TestChannelRejectsOutOfRangeID(t *testing.T) {
	d, _ := New(48000)
	if _, err := d.Channel(-1); err == nil {
		t.Error("expected error for channel id -1")
	}
	if _, err := d.Channel(NumChannels); err == nil {
		t.Error("expected error for channel id out of range")
	}
}

func TestSetVectorForceRejectsInvalidActuator(t *testing.T) {
	d, _ := New(48000)
	if err := d.SetVectorForce(0, 0, 1, 60); err == nil {
		t.Error("expected error for actuator 0")
	}
	if err := d.SetVectorForce(3, 0, 1, 60); err == nil {
		t.Error("expected error for actuator 3")
	}
}

func TestSetVectorForceDecomposesAngleZero(t *testing.T) {
	d, _ := New(48000)
	if err := d.SetVectorForce(1, 0, 1.0, 60); err != nil {
		t.Fatal(err)
	}
	snap := d.Snapshot()
	x, y := snap[0], snap[1]
	if math.Abs(float64(x.Amplitude)-1.0) > 1e-6 {
		t.Errorf("x amplitude = %g, want 1.0 at angle 0", x.Amplitude)
	}
	if y.Amplitude > 1e-6 {
		t.Errorf("y amplitude = %g, want ~0 at angle 0", y.Amplitude)
	}
	if !x.Active || !y.Active {
		t.Error("SetVectorForce should activate both axis channels")
	}
}

func TestSetVectorForceYInversionAt90Degrees(t *testing.T) {
	d, _ := New(48000)
	if err := d.SetVectorForce(1, 90, 1.0, 60); err != nil {
		t.Fatal(err)
	}
	snap := d.Snapshot()
	x, y := snap[0], snap[1]
	if x.Amplitude > 1e-6 {
		t.Errorf("x amplitude = %g, want ~0 at angle 90", x.Amplitude)
	}
	if math.Abs(float64(y.Amplitude)-1.0) > 1e-6 {
		t.Errorf("y amplitude = %g, want 1.0 at angle 90", y.Amplitude)
	}
	// y = -magnitude*sin(theta); at theta=90deg sin=1 so y should carry
	// the Falling polarity (negative sign), proving the inversion applied.
	if y.Polarity != waveform.Falling {
		t.Error("expected Y channel to carry the inverted (negative) polarity at angle 90")
	}
}

func TestSetVectorForceActuator2UsesChannels2And3(t *testing.T) {
	d, _ := New(48000)
	if err := d.SetVectorForce(2, 45, 0.7, 60); err != nil {
		t.Fatal(err)
	}
	snap := d.Snapshot()
	if !snap[2].Active || !snap[3].Active {
		t.Error("actuator 2 should drive channels 2 and 3")
	}
	if snap[0].Active || snap[1].Active {
		t.Error("actuator 2 command should not touch actuator 1's channels")
	}
}

func TestSetActuatorMirrorOnlyAppliesToActuator2(t *testing.T) {
	d, _ := New(48000)
	if err := d.SetActuatorMirror(1, true); err == nil {
		t.Error("expected error: mirroring is only configurable for actuator 2")
	}
	if err := d.SetActuatorMirror(2, true); err != nil {
		t.Fatal(err)
	}
}

func TestDiscreteModeRequiresEnable(t *testing.T) {
	d, _ := New(48000)
	if err := d.SetDiscreteDirection(1, 0, 0.5, 60); err == nil {
		t.Fatal("expected ErrModeDisabled before EnableDiscreteMode")
	}
	d.EnableDiscreteMode()
	if err := d.SetDiscreteDirection(1, 0, 0.5, 60); err != nil {
		t.Fatal(err)
	}
	d.DisableDiscreteMode()
	if err := d.SetDiscreteDirection(1, 0, 0.5, 60); err == nil {
		t.Fatal("expected ErrModeDisabled after DisableDiscreteMode")
	}
}

func TestSetDiscreteDirectionRejectsOutOfRangeIndex(t *testing.T) {
	d, _ := New(48000)
	d.EnableDiscreteMode()
	if err := d.SetDiscreteDirection(1, -1, 0.5, 60); err == nil {
		t.Error("expected error for negative direction index")
	}
	if err := d.SetDiscreteDirection(1, NumDirections, 0.5, 60); err == nil {
		t.Error("expected error for direction index == NumDirections")
	}
}

func TestDiscreteDirectionsTableHas16EvenlySpacedAngles(t *testing.T) {
	dirs := DiscreteDirections()
	if len(dirs) != NumDirections {
		t.Fatalf("got %d directions, want %d", len(dirs), NumDirections)
	}
	for i, a := range dirs {
		want := float64(i) * DirectionStepDeg
		if a != want {
			t.Errorf("direction %d = %g, want %g", i, a, want)
		}
	}
}

func TestComposeBlockZeroFillsUnavailableChannels(t *testing.T) {
	d, _ := New(48000)
	if err := d.SetVectorForce(1, 0, 1.0, 60); err != nil {
		t.Fatal(err)
	}
	if err := d.SetVectorForce(2, 0, 1.0, 60); err != nil {
		t.Fatal(err)
	}
	n := 32
	buf := make([]float32, n*NumChannels)
	d.ComposeBlock(buf, n, 2)
	for k := 0; k < n; k++ {
		if buf[k*NumChannels+2] != 0 || buf[k*NumChannels+3] != 0 {
			t.Fatalf("frame %d: channels 2/3 should be zero-filled when availableChannels=2", k)
		}
	}
}

func TestComposeBlockPlacesChannel0InFirstColumn(t *testing.T) {
	d, _ := New(48000)
	if err := d.SetVectorForce(1, 0, 1.0, 60); err != nil {
		t.Fatal(err)
	}
	n := 16
	buf := make([]float32, n*NumChannels)
	d.ComposeBlock(buf, n, NumChannels)

	ch0 := d2ndRender(t, d, n)
	for k := 0; k < n; k++ {
		if buf[k*NumChannels] != ch0[k] {
			t.Fatalf("frame %d channel 0 = %g, want %g", k, buf[k*NumChannels], ch0[k])
		}
	}
}

// d2ndRender renders a fresh device with identical vector-force state to
// cross-check ComposeBlock's interleaving against a direct channel render.
func d2ndRender(t *testing.T, reference *Device, n int) []float32 {
	t.Helper()
	d2, _ := New(48000)
	if err := d2.SetVectorForce(1, 0, 1.0, 60); err != nil {
		t.Fatal(err)
	}
	ch, err := d2.Channel(0)
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]float32, n)
	ch.Render(buf)
	return buf
}

func TestPeekWaveformReturnsOnePerChannel(t *testing.T) {
	d, _ := New(48000)
	out := d.PeekWaveform(64)
	if len(out) != NumChannels {
		t.Fatalf("got %d channel buffers, want %d", len(out), NumChannels)
	}
	for i, buf := range out {
		if len(buf) != 64 {
			t.Errorf("channel %d buffer length = %d, want 64", i, len(buf))
		}
	}
}
