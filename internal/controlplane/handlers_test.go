package controlplane

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kgkgzrtk/yuragi-haptic-go/internal/audiohost"
	"github.com/kgkgzrtk/yuragi-haptic-go/internal/broadcast"
	"github.com/kgkgzrtk/yuragi-haptic-go/internal/hapticctrl"
	"github.com/kgkgzrtk/yuragi-haptic-go/internal/yuragi"
)

type stubEnumerator struct{ channels int }

func (s stubEnumerator) Enumerate() ([]audiohost.DeviceInfo, error) {
	return []audiohost.DeviceInfo{{Name: "default", OutputChannels: s.channels, IsDefault: true}}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	controller, err := hapticctrl.New(44100, 64, stubEnumerator{channels: 4})
	if err != nil {
		t.Fatal(err)
	}
	animator := yuragi.New(controller.SetVectorForce)
	hub := broadcast.NewHub()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(controller, animator, hub, logger)
}

func do(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

// S1 Health.
func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	mux := http.NewServeMux()
	s.Routes(mux)

	rec := do(t, mux, "GET", "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q, want healthy", resp.Status)
	}
}

func ptrF64(v float64) *float64 { return &v }
func ptrF32(v float32) *float32 { return &v }
func ptrBool(v bool) *bool      { return &v }

// S2/S3: parameter round trip and rejection of an out-of-range frequency.
func TestParameterRoundTripAndRejection(t *testing.T) {
	s := newTestServer(t)
	mux := http.NewServeMux()
	s.Routes(mux)

	putReq := UpdateParametersRequest{Channels: []ChannelParamsDTO{
		{ChannelID: 0, Frequency: ptrF64(60), Amplitude: ptrF32(0.5), Phase: ptrF64(0), Polarity: ptrBool(true)},
		{ChannelID: 1, Frequency: ptrF64(70), Amplitude: ptrF32(0.6), Phase: ptrF64(90), Polarity: ptrBool(true)},
		{ChannelID: 2, Frequency: ptrF64(80), Amplitude: ptrF32(0.7), Phase: ptrF64(180), Polarity: ptrBool(false)},
		{ChannelID: 3, Frequency: ptrF64(90), Amplitude: ptrF32(0.8), Phase: ptrF64(270), Polarity: ptrBool(false)},
	}}
	rec := do(t, mux, "PUT", "/parameters", putReq)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /parameters status = %d body=%s", rec.Code, rec.Body.String())
	}

	getRec := do(t, mux, "GET", "/parameters", nil)
	var got ParametersResponse
	if err := json.Unmarshal(getRec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Channels[0].Frequency != 60 || got.Channels[3].Phase != 270 {
		t.Fatalf("GET /parameters = %+v, did not reflect the PUT", got)
	}

	// S3: invalid frequency must be rejected and leave state unchanged.
	badReq := UpdateParametersRequest{Channels: []ChannelParamsDTO{{ChannelID: 0, Frequency: ptrF64(200)}}}
	badRec := do(t, mux, "PUT", "/parameters", badReq)
	if badRec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for out-of-range frequency", badRec.Code)
	}
	afterRec := do(t, mux, "GET", "/parameters", nil)
	var after ParametersResponse
	_ = json.Unmarshal(afterRec.Body.Bytes(), &after)
	if after.Channels[0].Frequency != 60 {
		t.Fatalf("channel 0 frequency = %g after rejected update, want unchanged 60", after.Channels[0].Frequency)
	}
}

// S4 Waveform snapshot.
func TestWaveformSnapshot(t *testing.T) {
	s := newTestServer(t)
	mux := http.NewServeMux()
	s.Routes(mux)

	putReq := UpdateParametersRequest{Channels: []ChannelParamsDTO{
		{ChannelID: 0, Frequency: ptrF64(60), Amplitude: ptrF32(0.5), Phase: ptrF64(0), Polarity: ptrBool(true)},
	}}
	do(t, mux, "PUT", "/parameters", putReq)

	rec := do(t, mux, "POST", "/waveform", WaveformRequest{DurationS: 0.01, SampleRate: 44100})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
	}
	var resp WaveformResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Channels) != 4 {
		t.Fatalf("got %d channels, want 4", len(resp.Channels))
	}
	for _, ch := range resp.Channels {
		if len(ch.Data) != 441 {
			t.Errorf("channel %d has %d samples, want 441", ch.ChannelID, len(ch.Data))
		}
	}
}

func TestVectorForceEndpoint(t *testing.T) {
	s := newTestServer(t)
	mux := http.NewServeMux()
	s.Routes(mux)

	rec := do(t, mux, "POST", "/vector-force", VectorForceRequest{DeviceID: 1, AngleDeg: 45, Magnitude: 1.0, FreqHz: 60})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
	}

	badRec := do(t, mux, "POST", "/vector-force", VectorForceRequest{DeviceID: 5, AngleDeg: 0, Magnitude: 1, FreqHz: 60})
	if badRec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for invalid device id", badRec.Code)
	}
}

func TestDeviceInfoEndpoint(t *testing.T) {
	s := newTestServer(t)
	mux := http.NewServeMux()
	s.Routes(mux)

	rec := do(t, mux, "GET", "/device-info", nil)
	var info DeviceInfoDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if !info.Available || info.Channels != 4 || info.DeviceMode != "dual" {
		t.Errorf("device info = %+v, want available dual 4-channel", info)
	}
}
