//go:build !headless

package audiohost

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

// OtoBackend streams audio through ebitengine/oto/v3. It ports the
// teacher's atomic-pointer player pattern (audio_backend_oto.go): the
// hot-path Read callback loads its SampleSource through an atomic.Pointer
// so it never contends with Start/Stop/Close, which only touch the mutex.
type OtoBackend struct {
	ctx    *oto.Context
	player *oto.Player

	source  atomic.Pointer[SampleSource]
	scratch []float32

	channels int
	mu       sync.Mutex
	started  bool
	closed   bool
}

// NewOtoBackend opens an oto context at sampleRate with the given
// interleaved channel count. The returned backend is not yet playing;
// call Start with a SampleSource.
func NewOtoBackend(sampleRate, channels int) (*OtoBackend, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   0, // let oto pick its platform default
	})
	if err != nil {
		return nil, err
	}
	<-ready
	return &OtoBackend{ctx: ctx, channels: channels}, nil
}

// Start binds source as the audio thread's sample provider and begins
// playback. Calling Start again while already started is a no-op.
func (b *OtoBackend) Start(source SampleSource) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.source.Store(&source)
	if b.player == nil {
		b.player = b.ctx.NewPlayer(b)
		b.scratch = make([]float32, 4096)
	}
	if !b.started {
		b.player.Play()
		b.started = true
	}
	return nil
}

// Read implements io.Reader for oto.Player. It is called on oto's internal
// audio goroutine and must stay allocation-free in steady state.
func (b *OtoBackend) Read(p []byte) (int, error) {
	srcPtr := b.source.Load()
	if srcPtr == nil {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	src := *srcPtr

	numSamples := len(p) / 4
	if len(b.scratch) < numSamples {
		b.scratch = make([]float32, numSamples)
	}
	samples := b.scratch[:numSamples]
	frames := numSamples / b.channels
	n, err := src.ReadInterleaved(samples[:frames*b.channels])
	if err != nil {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	produced := n * b.channels
	for i := produced; i < numSamples; i++ {
		samples[i] = 0
	}
	for i, s := range samples {
		bits := math.Float32bits(s)
		p[4*i] = byte(bits)
		p[4*i+1] = byte(bits >> 8)
		p[4*i+2] = byte(bits >> 16)
		p[4*i+3] = byte(bits >> 24)
	}
	return len(p), nil
}

// Stop halts playback without releasing the underlying context, so a
// later Start resumes cheaply.
func (b *OtoBackend) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started && b.player != nil {
		b.player.Pause()
		b.started = false
	}
}

// Close releases the player and marks the backend unusable.
func (b *OtoBackend) Close() {
	b.Stop()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.player != nil {
		b.player.Close()
		b.player = nil
	}
	b.closed = true
}
