package controlplane

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/kgkgzrtk/yuragi-haptic-go/internal/broadcast"
	"github.com/kgkgzrtk/yuragi-haptic-go/internal/channel"
	"github.com/kgkgzrtk/yuragi-haptic-go/internal/hapticctrl"
	"github.com/kgkgzrtk/yuragi-haptic-go/internal/haperr"
	"github.com/kgkgzrtk/yuragi-haptic-go/internal/waveform"
	"github.com/kgkgzrtk/yuragi-haptic-go/internal/yuragi"
)

// Server wires a Controller, an Animator, and a broadcast Hub behind the
// operations table of spec.md §6. It is intentionally a thin adapter:
// decode, call, publish, encode.
type Server struct {
	controller *hapticctrl.Controller
	animator   *yuragi.Animator
	hub        *broadcast.Hub
	logger     *slog.Logger
}

// NewServer builds a Server over an already-constructed Controller.
func NewServer(controller *hapticctrl.Controller, animator *yuragi.Animator, hub *broadcast.Hub, logger *slog.Logger) *Server {
	return &Server{controller: controller, animator: animator, hub: hub, logger: logger}
}

// Routes registers every handler on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /parameters", s.handleGetParameters)
	mux.HandleFunc("PUT /parameters", s.handlePutParameters)
	mux.HandleFunc("PUT /channels/{id}", s.handlePutChannel)
	mux.HandleFunc("POST /waveform", s.handlePostWaveform)
	mux.HandleFunc("POST /vector-force", s.handlePostVectorForce)
	mux.HandleFunc("POST /yuragi/preset", s.handlePostYuragiPreset)
	mux.HandleFunc("GET /streaming/status", s.handleStreamingStatus)
	mux.HandleFunc("POST /streaming/start", s.handleStreamingStart)
	mux.HandleFunc("POST /streaming/stop", s.handleStreamingStop)
	mux.HandleFunc("GET /device-info", s.handleDeviceInfo)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

func (s *Server) handleGetParameters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, parametersResponseFrom(s.controller.GetCurrentParameters()))
}

func (s *Server) handlePutParameters(w http.ResponseWriter, r *http.Request) {
	var req UpdateParametersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	batch := make([]hapticctrl.ChannelUpdate, len(req.Channels))
	for i, c := range req.Channels {
		batch[i] = hapticctrl.ChannelUpdate{ChannelID: c.ChannelID, Update: updateFromDTO(c)}
	}
	if err := s.controller.UpdateParameters(batch); err != nil {
		writeStatusForError(w, err)
		return
	}
	s.publishParametersUpdate()
	writeJSON(w, http.StatusOK, parametersResponseFrom(s.controller.GetCurrentParameters()))
}

func (s *Server) handlePutChannel(w http.ResponseWriter, r *http.Request) {
	id, err := parseChannelID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var dto ChannelParamsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	dto.ChannelID = id
	if err := s.controller.UpdateParameters([]hapticctrl.ChannelUpdate{{ChannelID: id, Update: updateFromDTO(dto)}}); err != nil {
		writeStatusForError(w, err)
		return
	}
	s.publishParametersUpdate()
	writeJSON(w, http.StatusOK, parametersResponseFrom(s.controller.GetCurrentParameters()))
}

func (s *Server) handlePostWaveform(w http.ResponseWriter, r *http.Request) {
	var req WaveformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.DurationS <= 0 || req.DurationS > 1 || req.SampleRate <= 0 {
		writeError(w, http.StatusBadRequest, haperr.InvalidParam)
		return
	}
	n := int(req.DurationS * req.SampleRate)
	rendered := s.controller.PeekWaveform(n)

	resp := WaveformResponse{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		SampleRate: req.SampleRate,
	}
	for id, data := range rendered {
		resp.Channels = append(resp.Channels, WaveformChannelData{ChannelID: id, Data: data})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePostVectorForce(w http.ResponseWriter, r *http.Request) {
	var req VectorForceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.controller.SetVectorForce(req.DeviceID, req.AngleDeg, req.Magnitude, req.FreqHz); err != nil {
		writeStatusForError(w, err)
		return
	}
	s.publishParametersUpdate()
	writeJSON(w, http.StatusOK, parametersResponseFrom(s.controller.GetCurrentParameters()))
}

func (s *Server) handlePostYuragiPreset(w http.ResponseWriter, r *http.Request) {
	var req YuragiPresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	preset := yuragi.Lookup(req.Preset)
	if req.Enabled {
		duration := time.Duration(req.Duration * float64(time.Second))
		s.animator.Start(1, preset, duration)
		s.animator.Start(2, preset, duration)
	} else {
		s.animator.Stop(1)
		s.animator.Stop(2)
	}
	s.publishStatusUpdate()
	status := "applied"
	params := map[string]any{
		"angle":         preset.InitialAngleDeg,
		"magnitude":     preset.Magnitude,
		"frequency":     preset.CarrierHz,
		"rotation_freq": preset.RotationHz,
	}
	if !req.Enabled {
		status = "disabled"
		params["magnitude"] = 0.0
		params["rotation_freq"] = 0.0
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": status, "preset": req.Preset, "parameters": params})
}

func (s *Server) handleStreamingStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, streamingStatusFrom(s.controller.GetStatus()))
}

// handleStreamingStart reports the current streaming status. It does not
// open a stream: Server holds no audio backend, so streaming is started
// only by whoever constructs the Controller (cmd/hapticd at startup), and
// a stream stopped through POST /streaming/stop stays stopped.
func (s *Server) handleStreamingStart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, streamingStatusFrom(s.controller.GetStatus()))
}

func (s *Server) handleStreamingStop(w http.ResponseWriter, r *http.Request) {
	s.controller.StopStreaming()
	s.publishStatusUpdate()
	writeJSON(w, http.StatusOK, streamingStatusFrom(s.controller.GetStatus()))
}

func (s *Server) handleDeviceInfo(w http.ResponseWriter, r *http.Request) {
	status := s.controller.GetStatus()
	writeJSON(w, http.StatusOK, DeviceInfoDTO{
		Available:  status.Device.Available,
		Channels:   status.Device.Channels,
		Name:       status.Device.Name,
		DeviceMode: string(status.Device.Mode),
	})
}

func (s *Server) publishParametersUpdate() {
	s.hub.Publish(broadcast.Message{
		Type:      broadcast.ParametersUpdate,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      parametersResponseFrom(s.controller.GetCurrentParameters()),
	})
}

func (s *Server) publishStatusUpdate() {
	s.hub.Publish(broadcast.Message{
		Type:      broadcast.StatusUpdate,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      streamingStatusFrom(s.controller.GetStatus()),
	})
}

func updateFromDTO(dto ChannelParamsDTO) channel.Update {
	u := channel.Update{
		FrequencyHz: dto.Frequency,
		Amplitude:   dto.Amplitude,
		PhaseDeg:    dto.Phase,
	}
	if dto.Polarity != nil {
		p := waveform.Polarity(*dto.Polarity)
		u.Polarity = &p
	}
	return u
}

func parametersResponseFrom(params [4]channel.Params) ParametersResponse {
	resp := ParametersResponse{Channels: make([]ChannelParamsSnapshot, len(params))}
	for i, p := range params {
		resp.Channels[i] = ChannelParamsSnapshot{
			ChannelID: i,
			Frequency: p.FrequencyHz,
			Amplitude: p.Amplitude,
			Phase:     p.PhaseDeg,
			Polarity:  bool(p.Polarity),
		}
	}
	return resp
}

func streamingStatusFrom(status hapticctrl.Status) StreamingStatus {
	return StreamingStatus{
		IsStreaming: status.IsStreaming,
		SampleRate:  status.SampleRate,
		BlockSize:   status.BlockSize,
		LatencyMS:   status.LatencyMS,
		DeviceInfo: DeviceInfoDTO{
			Available:  status.Device.Available,
			Channels:   status.Device.Channels,
			Name:       status.Device.Name,
			DeviceMode: string(status.Device.Mode),
		},
	}
}

func parseChannelID(raw string) (int, error) {
	var id int
	if _, err := fmt.Sscanf(raw, "%d", &id); err != nil {
		return 0, errors.Wrapf(haperr.InvalidParam, "invalid channel id %q", raw)
	}
	if id < channel.MinID || id > channel.MaxID {
		return 0, errors.Wrapf(haperr.InvalidParam, "channel id %d outside [%d, %d]", id, channel.MinID, channel.MaxID)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeStatusForError maps a haperr sentinel to its HTTP status per the
// error propagation table: validation errors are 4xx, availability
// errors are 503, everything else is 500.
func writeStatusForError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, haperr.InvalidParam), errors.Is(err, haperr.ModeDisabled):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, haperr.NotReady):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, haperr.AudioUnavailable):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
