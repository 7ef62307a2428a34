// Package audiohost is the thin boundary between the synthesis core and a
// real audio device. It mirrors the split the teacher uses for its own
// output backends (oto/v3 on desktop, a no-op stub when headless): a small
// interface the rest of the service programs against, with the actual
// device glue confined to one file per backend.
package audiohost

import "github.com/pkg/errors"

// ErrClosed is returned by OtoBackend.Start after Close.
var ErrClosed = errors.New("audiohost: backend closed")

// SampleSource is implemented by the synthesis core (internal/hapticctrl)
// and called from the host's audio thread. It must not block or allocate.
type SampleSource interface {
	// ReadInterleaved fills buf (len = frames*channels) with the next
	// frames of interleaved, column-major audio and reports how many
	// frames it actually produced.
	ReadInterleaved(buf []float32) (frames int, err error)
}

// Backend is a started/stopped audio output stream bound to one
// SampleSource for its lifetime.
type Backend interface {
	Start(source SampleSource) error
	Stop()
	Close()
}

// DeviceInfo describes one enumerated audio output, the shape Enumerator
// returns and hapticctrl's device-detection fallback chain consumes.
type DeviceInfo struct {
	Name           string
	OutputChannels int
	IsDefault      bool
}

// Enumerator lists the audio outputs visible to the host. Production code
// uses BestEffortEnumerator; tests inject a fixed table.
type Enumerator interface {
	Enumerate() ([]DeviceInfo, error)
}
