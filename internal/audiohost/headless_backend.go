// Package audiohost: HeadlessBackend drives a SampleSource on a plain
// ticker instead of a real audio device, for CI and the debug console
// when no output hardware is present. It ports the teacher's
// audio_backend_headless.go no-op shape, but actually pumps the source so
// tests can observe render output without a host device.
package audiohost

import (
	"sync"
	"time"
)

// HeadlessBackend calls ReadInterleaved on its own goroutine at the
// cadence frames/sampleRate would imply, discarding the rendered samples.
type HeadlessBackend struct {
	sampleRate int
	frames     int
	channels   int

	mu      sync.Mutex
	cancel  func()
	started bool
}

// NewHeadlessBackend constructs a backend that pumps frames samples per
// tick across channels columns at sampleRate's implied cadence.
func NewHeadlessBackend(sampleRate, frames, channels int) *HeadlessBackend {
	return &HeadlessBackend{sampleRate: sampleRate, frames: frames, channels: channels}
}

// Start begins pumping source on a background goroutine.
func (b *HeadlessBackend) Start(source SampleSource) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return nil
	}
	stop := make(chan struct{})
	b.cancel = func() { close(stop) }
	b.started = true

	period := time.Duration(float64(b.frames) / float64(b.sampleRate) * float64(time.Second))
	buf := make([]float32, b.frames*b.channels)
	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				_, _ = source.ReadInterleaved(buf)
			}
		}
	}()
	return nil
}

// Stop halts the pump goroutine. Idempotent.
func (b *HeadlessBackend) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started && b.cancel != nil {
		b.cancel()
		b.started = false
	}
}

// Close stops the backend; a headless backend holds no further resources.
func (b *HeadlessBackend) Close() { b.Stop() }
