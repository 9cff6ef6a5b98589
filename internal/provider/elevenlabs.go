package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	elevenLabsBaseURL      = "https://api.elevenlabs.io/v1"
	elevenLabsDefaultModel = "eleven_multilingual_v2"
	// Rachel, the default female American voice.
	elevenLabsDefaultVoice = "21m00Tcm4TlvDq8ikWAM"
)

// ElevenLabs synthesizes speech through the ElevenLabs REST API.
type ElevenLabs struct {
	apiKey  string
	voiceID string
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewElevenLabs creates an ElevenLabs provider. voiceID may be empty to use
// the default voice.
func NewElevenLabs(apiKey, voiceID string, log zerolog.Logger) *ElevenLabs {
	if voiceID == "" {
		voiceID = elevenLabsDefaultVoice
	}
	return &ElevenLabs{
		apiKey:  apiKey,
		voiceID: voiceID,
		baseURL: elevenLabsBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		log:     log,
	}
}

// Name implements Provider.
func (p *ElevenLabs) Name() string { return "elevenlabs" }

// Models lists the synthesis models the account can use.
func (p *ElevenLabs) Models(ctx context.Context) ([]Model, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("build models request: %w", err)
	}
	req.Header.Set("xi-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch models: status %d", resp.StatusCode)
	}

	var raw []struct {
		ModelID string `json:"model_id"`
		Name    string `json:"name"`
		CanTTS  bool   `json:"can_do_text_to_speech"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode models response: %w", err)
	}

	models := make([]Model, 0, len(raw))
	for _, m := range raw {
		if !m.CanTTS {
			continue
		}
		models = append(models, Model{ID: m.ModelID, Name: m.Name})
	}
	return models, nil
}

// Synthesize requests MP3 audio for the text.
func (p *ElevenLabs) Synthesize(ctx context.Context, text, modelID string) ([]byte, string, error) {
	if modelID == "" {
		modelID = elevenLabsDefaultModel
	}

	payload := map[string]any{
		"text":     text,
		"model_id": modelID,
		"voice_settings": map[string]float64{
			"stability":        0.5,
			"similarity_boost": 0.75,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("marshal synthesis payload: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s?output_format=mp3_44100_128", p.baseURL, p.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("build synthesis request: %w", err)
	}
	req.Header.Set("xi-api-key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("synthesize: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		p.log.Warn().Int("status", resp.StatusCode).Str("model", modelID).Msg("elevenlabs synthesis rejected")
		return nil, "", fmt.Errorf("synthesize: status %d: %s", resp.StatusCode, detail)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read synthesis response: %w", err)
	}
	return audio, "mp3", nil
}
