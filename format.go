package ttsrouter

import (
	"github.com/TTS-AGI/tts-router-v2/internal/codec"
	"github.com/TTS-AGI/tts-router-v2/internal/types"
)

// Format identifies an audio container format.
type Format = types.Format

const (
	FormatUnknown = types.FormatUnknown
	FormatWAV     = types.FormatWAV
	FormatMP3     = types.FormatMP3
	FormatOgg     = types.FormatOgg
	FormatFLAC    = types.FormatFLAC
	FormatAIFF    = types.FormatAIFF
	FormatM4A     = types.FormatM4A
)

// ParseFormat maps a file extension or provider-reported format name
// ("wav", "mp3", ...) to a Format. Unrecognized names map to
// FormatUnknown.
func ParseFormat(s string) Format {
	return types.ParseFormat(s)
}

// DetectFormat sniffs the leading bytes of data and returns the
// container format, or FormatUnknown if no known magic matches.
func DetectFormat(data []byte) Format {
	return codec.DetectFormat(data)
}
