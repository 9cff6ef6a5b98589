package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	ttsrouter "github.com/TTS-AGI/tts-router-v2"
	"github.com/TTS-AGI/tts-router-v2/internal/provider"
	"github.com/TTS-AGI/tts-router-v2/internal/types"
)

type stubProvider struct {
	name      string
	models    []provider.Model
	audio     []byte
	format    string
	synthErr  error
	modelsErr error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Models(context.Context) ([]provider.Model, error) {
	if s.modelsErr != nil {
		return nil, s.modelsErr
	}
	return s.models, nil
}

func (s *stubProvider) Synthesize(_ context.Context, text, modelID string) ([]byte, string, error) {
	if s.synthErr != nil {
		return nil, "", s.synthErr
	}
	return s.audio, s.format, nil
}

type stubCodec struct {
	encoded   []byte
	encodeErr error
}

func (c *stubCodec) DecodeToPCM(_ context.Context, raw []byte, _ types.Format) (types.PCM, error) {
	return types.PCM{Data: raw, SampleRate: 44100, Channels: 1, BitDepth: 16}, nil
}

func (c *stubCodec) EncodeFromPCM(context.Context, types.PCM) ([]byte, error) {
	if c.encodeErr != nil {
		return nil, c.encodeErr
	}
	return c.encoded, nil
}

// mp3Fixture is a two-frame MPEG1 Layer III stream with a trailing v1
// tag, the smallest stream that exercises both parser and sanitizer.
func mp3Fixture() []byte {
	frame := make([]byte, 417)
	frame[0], frame[1], frame[2], frame[3] = 0xFF, 0xFB, 0x90, 0xC0
	for i := 4; i < len(frame); i++ {
		frame[i] = 0xAA
	}
	tag := make([]byte, 128)
	copy(tag, "TAG")
	copy(tag[33:], "ElevenLabs-TTS")

	var buf bytes.Buffer
	buf.Write(frame)
	buf.Write(frame)
	buf.Write(tag)
	return buf.Bytes()
}

func newTestServer(t *testing.T, providers []provider.Provider, c *stubCodec) *httptest.Server {
	t.Helper()
	if c == nil {
		c = &stubCodec{encoded: mp3Fixture()}
	}
	pipe := ttsrouter.New(c)
	srv := New(provider.NewRegistry(providers...), pipe, zerolog.Nop())
	mux := http.NewServeMux()
	srv.Register(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func defaultProviders() []provider.Provider {
	return []provider.Provider{
		&stubProvider{
			name:   "elevenlabs",
			models: []provider.Model{{ID: "eleven_multilingual_v2", Name: "Eleven Multilingual v2"}},
			audio:  []byte("fake wav bytes"),
			format: "wav",
		},
		&stubProvider{name: "openai", format: "mp3", audio: []byte("x")},
	}
}

func getJSON(t *testing.T, url string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s: status %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func TestHandleRoot(t *testing.T) {
	ts := newTestServer(t, defaultProviders(), nil)

	var got rootResponse
	getJSON(t, ts.URL+"/", http.StatusOK, &got)
	if got.Service != "tts-router" {
		t.Errorf("Service = %q", got.Service)
	}
	if len(got.Providers) != 2 {
		t.Errorf("Providers = %v, want 2 entries", got.Providers)
	}
}

func TestHandleProviders(t *testing.T) {
	ts := newTestServer(t, defaultProviders(), nil)

	var got map[string][]string
	getJSON(t, ts.URL+"/providers", http.StatusOK, &got)
	want := []string{"elevenlabs", "openai"}
	if len(got["providers"]) != len(want) {
		t.Fatalf("providers = %v, want %v", got["providers"], want)
	}
	for i, name := range want {
		if got["providers"][i] != name {
			t.Errorf("providers[%d] = %q, want %q", i, got["providers"][i], name)
		}
	}
}

func TestHandleModels(t *testing.T) {
	ts := newTestServer(t, defaultProviders(), nil)

	var got modelsResponse
	getJSON(t, ts.URL+"/providers/elevenlabs/models", http.StatusOK, &got)
	if got.Provider != "elevenlabs" || len(got.Models) != 1 {
		t.Errorf("unexpected response: %+v", got)
	}

	var fail errorResponse
	getJSON(t, ts.URL+"/providers/nope/models", http.StatusBadRequest, &fail)
	if !strings.Contains(fail.Detail, "unknown provider") {
		t.Errorf("Detail = %q", fail.Detail)
	}
}

func TestHandleAllModels(t *testing.T) {
	providers := append(defaultProviders(),
		&stubProvider{name: "flaky", modelsErr: errors.New("upstream down")})
	ts := newTestServer(t, providers, nil)

	var got struct {
		Models map[string][]provider.Model `json:"models"`
	}
	getJSON(t, ts.URL+"/models", http.StatusOK, &got)
	if _, ok := got.Models["elevenlabs"]; !ok {
		t.Error("elevenlabs models missing from aggregate listing")
	}
	if _, ok := got.Models["openai"]; !ok {
		t.Error("openai models missing from aggregate listing")
	}
	if _, ok := got.Models["flaky"]; ok {
		t.Error("failing provider should be omitted, not listed")
	}
}

func postTTS(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/tts", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /tts: %v", err)
	}
	return resp
}

func TestHandleTTS_Success(t *testing.T) {
	ts := newTestServer(t, defaultProviders(), nil)

	resp := postTTS(t, ts, `{"text":"hello world","provider":"ElevenLabs","model":"eleven_multilingual_v2"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got ttsResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.Status != "success" || got.Provider != "elevenlabs" || got.Extension != "mp3" {
		t.Errorf("unexpected response: %+v", got)
	}
	audio, err := base64.StdEncoding.DecodeString(got.AudioData)
	if err != nil {
		t.Fatalf("audio_data is not valid base64: %v", err)
	}
	if len(audio) != len(mp3Fixture()) {
		t.Errorf("audio length = %d, want %d", len(audio), len(mp3Fixture()))
	}
	if bytes.Contains(audio, []byte("ElevenLabs")) || bytes.Contains(audio, []byte("TAG")) {
		t.Error("served audio still carries provider signatures")
	}
}

func TestHandleTTS_Validation(t *testing.T) {
	ts := newTestServer(t, defaultProviders(), nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"bad json", `{"text": `, http.StatusBadRequest},
		{"empty text", `{"text":"","provider":"openai"}`, http.StatusBadRequest},
		{"text too long", `{"text":"` + strings.Repeat("a", maxTextLen+1) + `","provider":"openai"}`, http.StatusBadRequest},
		{"missing provider", `{"text":"hi"}`, http.StatusBadRequest},
		{"unknown provider", `{"text":"hi","provider":"acme"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postTTS(t, ts, tt.body)
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			var fail errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&fail); err != nil {
				t.Fatalf("decoding error body: %v", err)
			}
			if fail.Detail == "" {
				t.Error("error response has empty detail")
			}
		})
	}
}

func TestHandleTTS_SynthesisFailure(t *testing.T) {
	providers := []provider.Provider{
		&stubProvider{name: "flaky", synthErr: errors.New("upstream 500: key rejected")},
	}
	ts := newTestServer(t, providers, nil)

	resp := postTTS(t, ts, `{"text":"hi","provider":"flaky"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	var fail errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&fail); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if strings.Contains(fail.Detail, "key rejected") {
		t.Error("upstream error detail leaked to client")
	}
}

func TestHandleTTS_PipelineFailure(t *testing.T) {
	c := &stubCodec{encodeErr: &types.EncodeError{Reason: "encoder exited with status 1"}}
	ts := newTestServer(t, defaultProviders(), c)

	resp := postTTS(t, ts, `{"text":"hi","provider":"openai"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	var fail errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&fail); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if strings.Contains(fail.Detail, "encoder exited") {
		t.Error("codec error detail leaked to client")
	}
}
