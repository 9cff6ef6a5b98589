package types

import "strings"

// Format represents the container format of provider-supplied audio.
type Format int

const (
	// FormatUnknown represents an unrecognized container; the codec falls
	// back to content sniffing.
	FormatUnknown Format = iota
	// FormatWAV represents RIFF/WAVE audio.
	FormatWAV
	// FormatMP3 represents MPEG audio streams, tagged or bare.
	FormatMP3
	// FormatOgg represents Ogg containers (Vorbis or Opus).
	FormatOgg
	// FormatFLAC represents FLAC audio.
	FormatFLAC
	// FormatAIFF represents AIFF/AIFC audio.
	FormatAIFF
	// FormatM4A represents MP4/M4A containers.
	FormatM4A
)

// String returns the human-readable format name.
func (f Format) String() string {
	switch f {
	case FormatWAV:
		return "WAV"
	case FormatMP3:
		return "MP3"
	case FormatOgg:
		return "Ogg"
	case FormatFLAC:
		return "FLAC"
	case FormatAIFF:
		return "AIFF"
	case FormatM4A:
		return "M4A"
	default:
		return "Unknown"
	}
}

// Extension returns the conventional file extension for this format,
// without the leading dot.
func (f Format) Extension() string {
	switch f {
	case FormatWAV:
		return "wav"
	case FormatMP3:
		return "mp3"
	case FormatOgg:
		return "ogg"
	case FormatFLAC:
		return "flac"
	case FormatAIFF:
		return "aiff"
	case FormatM4A:
		return "m4a"
	default:
		return ""
	}
}

// ParseFormat maps a provider-declared extension or format name to a Format.
// Unrecognized names map to FormatUnknown rather than failing; the codec
// treats an unknown hint as "sniff the bytes".
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "wav", "wave":
		return FormatWAV
	case "mp3", "mpeg", "mpga":
		return FormatMP3
	case "ogg", "oga", "opus":
		return FormatOgg
	case "flac":
		return FormatFLAC
	case "aiff", "aif", "aifc":
		return FormatAIFF
	case "m4a", "mp4", "aac":
		return FormatM4A
	default:
		return FormatUnknown
	}
}
