package ttsrouter

import "github.com/TTS-AGI/tts-router-v2/internal/types"

// The concrete error types live in internal/types so that internal
// packages can return them without importing the root package. They are
// aliased here so callers only ever need this package.

// DecodeError reports a failure converting provider audio to PCM.
type DecodeError = types.DecodeError

// EncodeError reports a failure producing the canonical MP3 output.
type EncodeError = types.EncodeError

// MalformedStreamError reports an encoded stream that could not be
// indexed, with the byte offset where parsing gave up.
type MalformedStreamError = types.MalformedStreamError

// TimeoutError reports a codec invocation that exceeded its deadline.
type TimeoutError = types.TimeoutError

// PipelineError wraps a stage failure with the name of the stage that
// produced it.
type PipelineError = types.PipelineError
