// Package controlplane is the HTTP-ish control-plane boundary: typed
// request/response shapes and a thin net/http handler set over
// hapticctrl.Controller. The wire encoding is not normative (spec.md
// §6); JSON-over-net/http is simply a concrete choice so the operations
// have somewhere to run. Schema validation, CORS, and auth are kept to a
// single middleware function rather than a framework, matching how
// lightly the example pack's own services are wired.
package controlplane

// ChannelParamsDTO is one channel's parameters on the wire.
type ChannelParamsDTO struct {
	ChannelID int      `json:"channelId"`
	Frequency *float64 `json:"frequency,omitempty"`
	Amplitude *float32 `json:"amplitude,omitempty"`
	Phase     *float64 `json:"phase,omitempty"`
	Polarity  *bool    `json:"polarity,omitempty"`
}

// ParametersResponse is the GET /parameters shape.
type ParametersResponse struct {
	Channels []ChannelParamsSnapshot `json:"channels"`
}

// ChannelParamsSnapshot is a fully-populated (non-optional) channel
// record, used in responses.
type ChannelParamsSnapshot struct {
	ChannelID int     `json:"channelId"`
	Frequency float64 `json:"frequency"`
	Amplitude float32 `json:"amplitude"`
	Phase     float64 `json:"phase"`
	Polarity  bool    `json:"polarity"`
}

// UpdateParametersRequest is the PUT /parameters body.
type UpdateParametersRequest struct {
	Channels []ChannelParamsDTO `json:"channels"`
}

// VectorForceRequest is the POST /vector-force body.
type VectorForceRequest struct {
	DeviceID  int     `json:"device_id"`
	AngleDeg  float64 `json:"angle"`
	Magnitude float64 `json:"magnitude"`
	FreqHz    float64 `json:"frequency"`
}

// WaveformRequest is the POST /waveform body.
type WaveformRequest struct {
	DurationS  float64 `json:"duration_s"`
	SampleRate float64 `json:"sample_rate"`
}

// WaveformChannelData is one channel's rendered samples.
type WaveformChannelData struct {
	ChannelID int       `json:"channelId"`
	Data      []float32 `json:"data"`
}

// WaveformResponse is the POST /waveform response shape.
type WaveformResponse struct {
	Timestamp  string                `json:"timestamp"`
	SampleRate float64               `json:"sample_rate"`
	Channels   []WaveformChannelData `json:"channels"`
}

// YuragiPresetRequest is the POST /yuragi/preset body.
type YuragiPresetRequest struct {
	Preset   string  `json:"preset"`
	Duration float64 `json:"duration"`
	Enabled  bool    `json:"enabled"`
}

// StreamingStatus is the GET /streaming/status response shape.
type StreamingStatus struct {
	IsStreaming bool          `json:"is_streaming"`
	SampleRate  int           `json:"sample_rate"`
	BlockSize   int           `json:"block_size"`
	LatencyMS   float64       `json:"latency_ms"`
	DeviceInfo  DeviceInfoDTO `json:"device_info"`
}

// DeviceInfoDTO is the GET /device-info response shape.
type DeviceInfoDTO struct {
	Available  bool   `json:"available"`
	Channels   int    `json:"channels"`
	Name       string `json:"name"`
	DeviceMode string `json:"device_mode"`
}

// HealthResponse is the GET /health response shape.
type HealthResponse struct {
	Status string `json:"status"`
}
