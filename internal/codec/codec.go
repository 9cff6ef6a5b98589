// Package codec isolates the external audio codec behind a narrow
// two-operation interface: decode anything to raw PCM, encode PCM to the
// canonical MP3 profile. The rest of the pipeline never sees a container
// format other than the standardized output.
package codec

import (
	"context"

	"github.com/TTS-AGI/tts-router-v2/internal/types"
)

// Canonical output profile. Standardizing the numeric parameters removes any
// distinguishing signal carried by the technical characteristics themselves.
const (
	TargetSampleRate = 44100
	TargetChannels   = 1
	TargetBitDepth   = 16
	TargetBitrate    = 128000
)

// Codec decodes provider audio to PCM and re-encodes PCM to the canonical
// profile. Both operations are blocking and must honor the context; a
// subprocess implementation and an in-process library implementation are
// equally valid behind this interface.
type Codec interface {
	// DecodeToPCM decodes raw container bytes to a PCM buffer at the target
	// sample rate, channel count, and bit depth. The hint names the declared
	// source container; FormatUnknown triggers content sniffing.
	DecodeToPCM(ctx context.Context, raw []byte, hint types.Format) (types.PCM, error)

	// EncodeFromPCM encodes a PCM buffer to a 128 kbps CBR mono MP3 stream
	// with every tag writer the encoder exposes disabled.
	EncodeFromPCM(ctx context.Context, pcm types.PCM) ([]byte, error)
}
