// Package server exposes the synthesis and anonymization pipeline over
// HTTP. Every audio payload crosses the API as base64 inside JSON.
package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	ttsrouter "github.com/TTS-AGI/tts-router-v2"
	"github.com/TTS-AGI/tts-router-v2/internal/observability"
	"github.com/TTS-AGI/tts-router-v2/internal/provider"
)

// maxTextLen caps the synthesis text length, matching the limits the
// upstream providers enforce.
const maxTextLen = 5000

type Server struct {
	registry *provider.Registry
	pipe     *ttsrouter.Pipeline
	log      zerolog.Logger
}

func New(registry *provider.Registry, pipe *ttsrouter.Pipeline, log zerolog.Logger) *Server {
	return &Server{registry: registry, pipe: pipe, log: log}
}

// Register adds all API routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /providers", s.handleProviders)
	mux.HandleFunc("GET /models", s.handleAllModels)
	mux.HandleFunc("GET /providers/{provider}/models", s.handleModels)
	mux.HandleFunc("POST /tts", s.handleTTS)
}

type rootResponse struct {
	Service   string   `json:"service"`
	Version   string   `json:"version"`
	Providers []string `json:"providers"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{
		Service:   "tts-router",
		Version:   ttsrouter.Version,
		Providers: s.registry.Names(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProviders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"providers": s.registry.Names()})
}

type modelsResponse struct {
	Provider string           `json:"provider"`
	Models   []provider.Model `json:"models"`
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("provider")
	p, ok := s.registry.Get(name)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown provider: "+name)
		return
	}
	models, err := p.Models(r.Context())
	if err != nil {
		s.log.Error().Err(err).Str("provider", p.Name()).Msg("listing models failed")
		writeError(w, http.StatusBadGateway, "provider unavailable")
		return
	}
	writeJSON(w, http.StatusOK, modelsResponse{Provider: p.Name(), Models: models})
}

// handleAllModels lists every provider's models, querying the upstream
// APIs in parallel. A provider that fails to answer is omitted rather
// than failing the whole listing.
func (s *Server) handleAllModels(w http.ResponseWriter, r *http.Request) {
	names := s.registry.Names()
	results := make([][]provider.Model, len(names))

	g, ctx := errgroup.WithContext(r.Context())
	for i, name := range names {
		p, _ := s.registry.Get(name)
		g.Go(func() error {
			models, err := p.Models(ctx)
			if err != nil {
				s.log.Warn().Err(err).Str("provider", p.Name()).Msg("listing models failed")
				return nil
			}
			results[i] = models
			return nil
		})
	}
	_ = g.Wait()

	all := make(map[string][]provider.Model, len(names))
	for i, name := range names {
		if results[i] != nil {
			all[name] = results[i]
		}
	}
	writeJSON(w, http.StatusOK, map[string]map[string][]provider.Model{"models": all})
}

type ttsRequest struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

type ttsResponse struct {
	Status    string `json:"status"`
	Provider  string `json:"provider"`
	Model     string `json:"model,omitempty"`
	AudioData string `json:"audio_data"`
	Extension string `json:"extension"`
}

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()
	log := s.log.With().Str("request_id", reqID).Logger()

	var req ttsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if len(req.Text) > maxTextLen {
		writeError(w, http.StatusBadRequest, "text too long")
		return
	}
	if req.Provider == "" {
		writeError(w, http.StatusBadRequest, "provider is required")
		return
	}
	p, ok := s.registry.Get(req.Provider)
	if !ok {
		observability.RecordRequest(req.Provider, "unknown_provider")
		writeError(w, http.StatusBadRequest, "unknown provider: "+req.Provider)
		return
	}

	synthStart := time.Now()
	raw, format, err := p.Synthesize(r.Context(), req.Text, req.Model)
	if err != nil {
		observability.RecordRequest(p.Name(), "synthesis_error")
		log.Error().Err(err).Str("provider", p.Name()).Msg("synthesis failed")
		writeError(w, http.StatusInternalServerError, "synthesis failed")
		return
	}
	observability.ObserveSynthesis(p.Name(), time.Since(synthStart))

	pipeStart := time.Now()
	clean, err := s.pipe.Process(r.Context(), raw, ttsrouter.ParseFormat(format))
	if err != nil {
		var pe *ttsrouter.PipelineError
		if errors.As(err, &pe) {
			observability.RecordPipelineFailure(pe.Stage)
		}
		observability.RecordRequest(p.Name(), "pipeline_error")
		log.Error().Err(err).Str("provider", p.Name()).Msg("anonymization failed")
		// Never leak codec or parser internals to the client.
		writeError(w, http.StatusInternalServerError, "audio processing failed")
		return
	}
	observability.ObservePipeline(time.Since(pipeStart), len(raw), len(clean))
	observability.RecordRequest(p.Name(), "success")

	log.Info().
		Str("provider", p.Name()).
		Str("model", req.Model).
		Int("text_len", len(req.Text)).
		Int("audio_bytes", len(clean)).
		Msg("request served")

	writeJSON(w, http.StatusOK, ttsResponse{
		Status:    "success",
		Provider:  p.Name(),
		Model:     req.Model,
		AudioData: base64.StdEncoding.EncodeToString(clean),
		Extension: "mp3",
	})
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"detail":"encoding failure"}`, http.StatusInternalServerError)
	}
}
