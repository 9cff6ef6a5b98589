package ttsrouter

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/TTS-AGI/tts-router-v2/internal/codec"
	"github.com/TTS-AGI/tts-router-v2/internal/types"
)

// Codec converts between container audio and raw PCM. Implementations
// must be safe for concurrent use; the pipeline calls them from many
// goroutines.
type Codec = codec.Codec

// PCM is decoded audio: raw interleaved samples plus the parameters
// needed to interpret them.
type PCM = types.PCM

// Canonical output profile. Every stream leaving the pipeline has these
// characteristics regardless of input.
const (
	TargetSampleRate = codec.TargetSampleRate
	TargetChannels   = codec.TargetChannels
	TargetBitDepth   = codec.TargetBitDepth
	TargetBitrate    = codec.TargetBitrate
)

// NewFFmpegCodec returns a Codec backed by the ffmpeg binary at path
// ("ffmpeg" resolves via PATH), streamed through pipes with no
// temporary files. timeout bounds each invocation; zero means no limit.
func NewFFmpegCodec(path string, timeout time.Duration, log zerolog.Logger) Codec {
	return codec.NewFFmpeg(path, timeout, log)
}
