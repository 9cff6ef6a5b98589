package codec

import (
	"bytes"

	"github.com/TTS-AGI/tts-router-v2/internal/types"
)

// DetectFormat determines the container format from magic bytes at the start
// of the buffer. Detection does not validate the full structure; it exists so
// the decoder can pick a demuxer when the provider supplied no usable hint.
func DetectFormat(data []byte) types.Format {
	if len(data) < 4 {
		return types.FormatUnknown
	}

	switch {
	case bytes.HasPrefix(data, []byte("RIFF")):
		if len(data) >= 12 && bytes.Equal(data[8:12], []byte("WAVE")) {
			return types.FormatWAV
		}
	case bytes.HasPrefix(data, []byte("ID3")):
		return types.FormatMP3
	case data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return types.FormatMP3
	case bytes.HasPrefix(data, []byte("OggS")):
		return types.FormatOgg
	case bytes.HasPrefix(data, []byte("fLaC")):
		return types.FormatFLAC
	case bytes.HasPrefix(data, []byte("FORM")):
		if len(data) >= 12 && (bytes.Equal(data[8:12], []byte("AIFF")) || bytes.Equal(data[8:12], []byte("AIFC"))) {
			return types.FormatAIFF
		}
	}

	// MP4 family: an ftyp atom at offset 4.
	if len(data) >= 12 && bytes.Equal(data[4:8], []byte("ftyp")) {
		return types.FormatM4A
	}

	return types.FormatUnknown
}
