package ttsrouter

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/TTS-AGI/tts-router-v2/internal/codec"
	"github.com/TTS-AGI/tts-router-v2/internal/mpeg"
	"github.com/TTS-AGI/tts-router-v2/internal/sanitize"
)

// Stage names carried by PipelineError.
const (
	StageDecode   = "decode"
	StageEncode   = "encode"
	StageParse    = "parse"
	StageSanitize = "sanitize"
)

// Pipeline turns provider audio into anonymized canonical MP3. It is
// safe for concurrent use.
type Pipeline struct {
	codec   codec.Codec
	sem     *semaphore.Weighted
	timeout time.Duration
	log     zerolog.Logger
}

// New builds a Pipeline around the given codec.
func New(c codec.Codec, opts ...Option) *Pipeline {
	o := options{
		maxConcurrent: DefaultMaxConcurrent,
		log:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Pipeline{
		codec:   c,
		sem:     semaphore.NewWeighted(o.maxConcurrent),
		timeout: o.timeout,
		log:     o.log,
	}
}

// Process anonymizes raw provider audio. hint names the container
// format when the caller knows it; pass FormatUnknown to let the codec
// probe. The returned buffer is always a freshly encoded mono 44.1 kHz
// 128 kbps CBR MP3 with every non-audio byte zeroed.
//
// Any stage failure is returned as a *PipelineError wrapping the
// originating typed error. On error no audio is returned.
func (p *Pipeline) Process(ctx context.Context, raw []byte, hint Format) ([]byte, error) {
	start := time.Now()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	// Both codec passes run under one semaphore slot so a run never
	// holds two subprocesses at once.
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, &PipelineError{Stage: StageDecode, Err: err}
	}
	pcm, err := p.codec.DecodeToPCM(ctx, raw, hint)
	if err != nil {
		p.sem.Release(1)
		return nil, &PipelineError{Stage: StageDecode, Err: err}
	}
	std, err := p.codec.EncodeFromPCM(ctx, pcm)
	p.sem.Release(1)
	if err != nil {
		return nil, &PipelineError{Stage: StageEncode, Err: err}
	}

	idx, err := mpeg.Parse(std)
	if err != nil {
		return nil, &PipelineError{Stage: StageParse, Err: err}
	}
	clean, err := sanitize.Sanitize(std, idx)
	if err != nil {
		return nil, &PipelineError{Stage: StageSanitize, Err: err}
	}

	p.log.Debug().
		Int("in_bytes", len(raw)).
		Int("out_bytes", len(clean)).
		Int("frames", idx.FrameCount()).
		Dur("elapsed", time.Since(start)).
		Msg("audio anonymized")
	return clean, nil
}

// ProcessBase64 is Process for base64-encoded input and output, the
// shape audio takes inside JSON API payloads.
func (p *Pipeline) ProcessBase64(ctx context.Context, raw string, hint Format) (string, error) {
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", &PipelineError{Stage: StageDecode, Err: err}
	}
	clean, err := p.Process(ctx, data, hint)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(clean), nil
}
