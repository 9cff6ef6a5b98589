package provider

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAI synthesizes speech through the OpenAI audio API.
type OpenAI struct {
	client *openai.Client
	voice  openai.SpeechVoice
	log    zerolog.Logger
}

// NewOpenAI creates an OpenAI provider using the default voice.
func NewOpenAI(apiKey string, log zerolog.Logger) *OpenAI {
	return &OpenAI{
		client: openai.NewClient(apiKey),
		voice:  openai.VoiceAlloy,
		log:    log,
	}
}

// Name implements Provider.
func (p *OpenAI) Name() string { return "openai" }

// Models returns the speech models the API offers. The list is fixed; the
// models endpoint does not distinguish TTS-capable models.
func (p *OpenAI) Models(ctx context.Context) ([]Model, error) {
	return []Model{
		{ID: string(openai.TTSModel1), Name: "TTS-1"},
		{ID: string(openai.TTSModel1HD), Name: "TTS-1 HD"},
	}, nil
}

// Synthesize requests MP3 audio for the text.
func (p *OpenAI) Synthesize(ctx context.Context, text, modelID string) ([]byte, string, error) {
	model := openai.TTSModel1
	if modelID != "" {
		model = openai.SpeechModel(modelID)
	}

	resp, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          model,
		Input:          text,
		Voice:          p.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, "", fmt.Errorf("create speech: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, "", fmt.Errorf("read speech response: %w", err)
	}
	return audio, "mp3", nil
}
