// Package hapticctrl owns the Controller: the single mutex-guarded owner
// of a Device and the sole caller of its audio-facing Render/ComposeBlock
// path. It is the component the control-plane and animator packages both
// write through, and the SampleSource the audio boundary reads from.
package hapticctrl

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/kgkgzrtk/yuragi-haptic-go/internal/audiohost"
	"github.com/kgkgzrtk/yuragi-haptic-go/internal/channel"
	"github.com/kgkgzrtk/yuragi-haptic-go/internal/device"
	"github.com/kgkgzrtk/yuragi-haptic-go/internal/haperr"
)

// DefaultSampleRate and DefaultBlockSize match the configuration surface
// defaults (internal/hapticconfig.Default returns these values).
const (
	DefaultSampleRate = 44100
	DefaultBlockSize  = 512

	latencyRingCapacity = 100
)

// ChannelUpdate pairs a channel id with its partial update, the shape
// UpdateParameters' batch operation validates as a whole before applying
// any of it.
type ChannelUpdate struct {
	ChannelID int
	Update    channel.Update
}

// DeviceMode classifies the latched channel count.
type DeviceMode string

const (
	ModeNone   DeviceMode = "none"
	ModeSingle DeviceMode = "single" // 2 channels, actuator 1 only
	ModeDual   DeviceMode = "dual"   // 4 channels, both actuators
)

// DeviceInfo is the detection outcome exposed by GetStatus / device-info.
type DeviceInfo struct {
	Available bool
	Channels  int
	Name      string
	Mode      DeviceMode
}

// Status is the composite record returned by GetStatus.
type Status struct {
	IsStreaming bool
	SampleRate  int
	BlockSize   int
	LatencyMS   float64
	Device      DeviceInfo
}

// Controller binds a sample rate and block size to a Device, performs
// audio-device detection at construction, and serializes every writer
// (API handlers, animator tasks) against the audio callback behind a
// single mutex. It is not a pure reader/writer split (the callback itself
// advances render state), so the guard is a plain sync.Mutex rather than
// an RWMutex.
type Controller struct {
	mu sync.Mutex

	sampleRate int
	blockSize  int
	dev        *device.Device
	devInfo    DeviceInfo

	streaming bool
	backend   audiohost.Backend
	frameBuf  []float32 // pre-allocated at StartStreaming, reused every callback

	latencies    [latencyRingCapacity]time.Duration
	latencyCount int
	latencyNext  int
}

// New constructs a Controller, builds its Device, and runs device
// detection through enumerator. A nil enumerator leaves the device
// unavailable. No audio backend is bound here; StartStreaming takes one.
func New(sampleRate, blockSize int, enumerator audiohost.Enumerator) (*Controller, error) {
	if sampleRate <= 0 {
		return nil, errors.Wrap(haperr.InvalidParam, "sample rate must be positive")
	}
	if blockSize <= 0 {
		return nil, errors.Wrap(haperr.InvalidParam, "block size must be positive")
	}
	dev, err := device.New(float64(sampleRate))
	if err != nil {
		return nil, err
	}
	c := &Controller{sampleRate: sampleRate, blockSize: blockSize, dev: dev}
	c.devInfo = detectDevice(enumerator)
	return c, nil
}

// detectDevice implements the enumeration fallback chain: prefer the
// system default if it offers >=4 output channels, else >=2; otherwise
// fall back to the first >=4 then >=2 output-only device; else report
// unavailable. Grounded on
// original_source/backend/src/haptic_system/controller.py::_detect_audio_device.
func detectDevice(enumerator audiohost.Enumerator) DeviceInfo {
	if enumerator == nil {
		return DeviceInfo{Available: false, Mode: ModeNone}
	}
	devices, err := enumerator.Enumerate()
	if err != nil || len(devices) == 0 {
		return DeviceInfo{Available: false, Mode: ModeNone}
	}

	var def *audiohost.DeviceInfo
	for i := range devices {
		if devices[i].IsDefault {
			def = &devices[i]
			break
		}
	}
	if def != nil && def.OutputChannels >= 4 {
		return infoFrom(*def, 4)
	}
	if def != nil && def.OutputChannels >= 2 {
		return infoFrom(*def, 2)
	}
	for _, d := range devices {
		if d.OutputChannels >= 4 {
			return infoFrom(d, 4)
		}
	}
	for _, d := range devices {
		if d.OutputChannels >= 2 {
			return infoFrom(d, 2)
		}
	}
	return DeviceInfo{Available: false, Mode: ModeNone}
}

func infoFrom(d audiohost.DeviceInfo, channels int) DeviceInfo {
	mode := ModeSingle
	if channels >= 4 {
		mode = ModeDual
	}
	return DeviceInfo{Available: true, Channels: channels, Name: d.Name, Mode: mode}
}

// UpdateParameters validates the entire batch before applying any of it,
// so a single bad entry leaves every channel untouched. Auto-activates a
// channel whose resulting amplitude is greater than zero.
func (c *Controller) UpdateParameters(batch []ChannelUpdate) error {
	for _, u := range batch {
		if u.ChannelID < channel.MinID || u.ChannelID > channel.MaxID {
			return errors.Wrapf(haperr.InvalidParam, "channel id %d outside [%d, %d]", u.ChannelID, channel.MinID, channel.MaxID)
		}
		if err := u.Update.Validate(); err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range batch {
		if err := c.dev.SetChannelParams(u.ChannelID, u.Update); err != nil {
			// Validated above; a failure here is a programmer error, not
			// a client-facing one.
			panic(errors.Wrap(err, "channel update failed validation twice"))
		}
		if u.Update.Amplitude != nil && *u.Update.Amplitude > 0 {
			ch, _ := c.dev.Channel(u.ChannelID)
			ch.Activate()
		}
	}
	return nil
}

// GetCurrentParameters returns a snapshot of all four channels.
func (c *Controller) GetCurrentParameters() [device.NumChannels]channel.Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dev.Snapshot()
}

// SetVectorForce delegates to Device under the lock.
func (c *Controller) SetVectorForce(actuator int, angleDeg, magnitude, freqHz float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dev.SetVectorForce(actuator, angleDeg, magnitude, freqHz)
}

// PeekWaveform renders a read-only snapshot of n samples per channel
// without perturbing playback state.
func (c *Controller) PeekWaveform(n int) [device.NumChannels][]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dev.PeekWaveform(n)
}

// StartStreaming opens the host stream with backend and begins invoking
// the audio callback. Idempotent: calling it while already streaming is a
// no-op success.
func (c *Controller) StartStreaming(backend audiohost.Backend) error {
	c.mu.Lock()
	alreadyStreaming := c.streaming
	if !alreadyStreaming {
		if !c.devInfo.Available {
			c.mu.Unlock()
			return errors.Wrap(haperr.AudioUnavailable, "no suitable output device")
		}
		c.frameBuf = make([]float32, c.blockSize*device.NumChannels)
		c.dev.PrepareScratch(c.blockSize)
		c.backend = backend
	}
	c.mu.Unlock()

	if alreadyStreaming {
		return nil
	}
	if err := backend.Start(c); err != nil {
		return errors.Wrap(haperr.AudioUnavailable, err.Error())
	}
	c.mu.Lock()
	c.streaming = true
	c.mu.Unlock()
	return nil
}

// StopStreaming closes the host stream. Idempotent.
func (c *Controller) StopStreaming() {
	c.mu.Lock()
	backend := c.backend
	wasStreaming := c.streaming
	c.streaming = false
	c.mu.Unlock()

	if wasStreaming && backend != nil {
		backend.Stop()
	}
}

// ReadInterleaved is the audio callback, implementing
// audiohost.SampleSource. It records render latency into a capped ring
// and never blocks on anything but the parameter mutex.
func (c *Controller) ReadInterleaved(buf []float32) (int, error) {
	start := time.Now()

	c.mu.Lock()
	if !c.streaming {
		c.mu.Unlock()
		for i := range buf {
			buf[i] = 0
		}
		return 0, nil
	}
	frames := len(buf) / device.NumChannels
	// Render in chunks of at most blockSize frames so a host buffer larger
	// than one block never overruns the pre-allocated frameBuf.
	for off := 0; off < frames; off += c.blockSize {
		n := frames - off
		if n > c.blockSize {
			n = c.blockSize
		}
		c.dev.ComposeBlock(c.frameBuf[:n*device.NumChannels], n, c.devInfo.Channels)
		copy(buf[off*device.NumChannels:], c.frameBuf[:n*device.NumChannels])
	}
	c.mu.Unlock()

	c.recordLatency(time.Since(start))
	return frames, nil
}

func (c *Controller) recordLatency(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latencies[c.latencyNext] = d
	c.latencyNext = (c.latencyNext + 1) % latencyRingCapacity
	if c.latencyCount < latencyRingCapacity {
		c.latencyCount++
	}
}

// GetLatencyMS returns the mean of the callback-duration ring, falling
// back to the theoretical 1000*blockSize/sampleRate when the ring is
// empty (no callback has run yet).
func (c *Controller) GetLatencyMS() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latencyCount == 0 {
		return 1000 * float64(c.blockSize) / float64(c.sampleRate)
	}
	var sum time.Duration
	for i := 0; i < c.latencyCount; i++ {
		sum += c.latencies[i]
	}
	return float64(sum.Microseconds()) / 1000.0 / float64(c.latencyCount)
}

// GetStatus returns the composite status record.
func (c *Controller) GetStatus() Status {
	c.mu.Lock()
	streaming := c.streaming
	c.mu.Unlock()
	return Status{
		IsStreaming: streaming,
		SampleRate:  c.sampleRate,
		BlockSize:   c.blockSize,
		LatencyMS:   c.GetLatencyMS(),
		Device:      c.devInfo,
	}
}

// IsStreaming reports whether the controller currently owns an active
// stream.
func (c *Controller) IsStreaming() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.streaming
}

// EnableChannelResonator turns on the 2nd-order IIR shaping stage for one
// channel under the parameter lock.
func (c *Controller) EnableChannelResonator(id int, naturalFreqHz, damping float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, err := c.dev.Channel(id)
	if err != nil {
		return err
	}
	return ch.EnableResonator(naturalFreqHz, damping)
}

// EnableChannelNoise turns on Gaussian noise injection for one channel
// under the parameter lock.
func (c *Controller) EnableChannelNoise(id int, level float64, seed *int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, err := c.dev.Channel(id)
	if err != nil {
		return err
	}
	return ch.EnableNoise(level, seed)
}

// SetDiscreteMode toggles 16-direction discrete mode under the parameter
// lock.
func (c *Controller) SetDiscreteMode(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if enabled {
		c.dev.EnableDiscreteMode()
	} else {
		c.dev.DisableDiscreteMode()
	}
}

// SetDiscreteDirection delegates to Device.SetDiscreteDirection under the
// parameter lock.
func (c *Controller) SetDiscreteDirection(actuator, idx int, magnitude, freqHz float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dev.SetDiscreteDirection(actuator, idx, magnitude, freqHz)
}
