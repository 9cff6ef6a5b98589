package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/TTS-AGI/tts-router-v2/internal/types"
)

// FFmpeg runs the ffmpeg binary as a subprocess, streaming audio through
// stdin/stdout pipes. No temporary files touch disk, so nothing about a
// request outlives the process invocation.
type FFmpeg struct {
	path    string
	timeout time.Duration
	log     zerolog.Logger
}

// NewFFmpeg creates a subprocess codec. path is the ffmpeg binary ("ffmpeg"
// resolves via PATH); timeout bounds each invocation, zero means no limit.
func NewFFmpeg(path string, timeout time.Duration, log zerolog.Logger) *FFmpeg {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpeg{path: path, timeout: timeout, log: log}
}

// DecodeToPCM decodes any recognizable container to raw signed 16-bit PCM at
// the target rate and channel count. The hint selects the demuxer; with no
// usable hint the content is sniffed, and failing that ffmpeg probes the
// stream itself.
func (c *FFmpeg) DecodeToPCM(ctx context.Context, raw []byte, hint types.Format) (types.PCM, error) {
	if len(raw) == 0 {
		return types.PCM{}, &types.DecodeError{Format: hint, Reason: "empty input"}
	}

	format := hint
	if format == types.FormatUnknown {
		format = DetectFormat(raw)
	}

	out, err := c.run(ctx, "decode", decodeArgs(format), raw)
	if err != nil {
		var timeoutErr *types.TimeoutError
		if errors.As(err, &timeoutErr) {
			return types.PCM{}, err
		}
		return types.PCM{}, &types.DecodeError{Format: format, Reason: "ffmpeg decode failed", Err: err}
	}
	if len(out) == 0 {
		return types.PCM{}, &types.DecodeError{Format: format, Reason: "decoder produced no samples"}
	}

	return types.PCM{
		Data:       out,
		SampleRate: TargetSampleRate,
		Channels:   TargetChannels,
		BitDepth:   TargetBitDepth,
	}, nil
}

// EncodeFromPCM encodes raw PCM to the canonical MP3 profile with every tag
// writer disabled: no ID3v1, no ID3v2, no APE, no Xing header. What the
// encoder cannot be told to suppress, the sanitizer removes afterward.
func (c *FFmpeg) EncodeFromPCM(ctx context.Context, pcm types.PCM) ([]byte, error) {
	if len(pcm.Data) == 0 {
		return nil, &types.EncodeError{Reason: "empty sample buffer"}
	}

	out, err := c.run(ctx, "encode", encodeArgs(pcm), pcm.Data)
	if err != nil {
		var timeoutErr *types.TimeoutError
		if errors.As(err, &timeoutErr) {
			return nil, err
		}
		return nil, &types.EncodeError{Reason: "ffmpeg encode failed", Err: err}
	}
	if len(out) == 0 {
		return nil, &types.EncodeError{Reason: "encoder produced no output"}
	}
	return out, nil
}

// run executes one ffmpeg invocation under the configured deadline. The
// process is killed when the context expires; a deadline hit maps to
// TimeoutError rather than the generic exec error.
func (c *FFmpeg) run(ctx context.Context, op string, args []string, stdin []byte) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.path, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	c.log.Debug().
		Str("op", op).
		Int("in_bytes", len(stdin)).
		Int("out_bytes", stdout.Len()).
		Dur("elapsed", time.Since(start)).
		Err(err).
		Msg("ffmpeg invocation")

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, &types.TimeoutError{Op: op, Limit: c.timeout}
		}
		if msg := firstLine(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", op, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stdout.Bytes(), nil
}

// decodeArgs builds the argv for one decode invocation: any recognized
// container in, raw signed 16-bit PCM at the target rate and channel
// count out. An unknown format omits the -f flag so ffmpeg probes.
func decodeArgs(format types.Format) []string {
	args := []string{"-hide_banner", "-loglevel", "error"}
	if name := demuxerName(format); name != "" {
		args = append(args, "-f", name)
	}
	return append(args,
		"-i", "pipe:0",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", strconv.Itoa(TargetChannels),
		"-ar", strconv.Itoa(TargetSampleRate),
		"pipe:1",
	)
}

// encodeArgs builds the argv for one encode invocation: raw PCM in, the
// canonical MP3 profile out, with every tag writer disabled.
func encodeArgs(pcm types.PCM) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "s16le",
		"-ar", strconv.Itoa(pcm.SampleRate),
		"-ac", strconv.Itoa(pcm.Channels),
		"-i", "pipe:0",
		"-f", "mp3",
		"-acodec", "libmp3lame",
		"-b:a", strconv.Itoa(TargetBitrate/1000) + "k",
		"-ar", strconv.Itoa(TargetSampleRate),
		"-ac", strconv.Itoa(TargetChannels),
		"-map_metadata", "-1",
		"-id3v2_version", "0",
		"-write_id3v1", "0",
		"-write_xing", "0",
		"pipe:1",
	}
}

// demuxerName maps a detected format to the ffmpeg demuxer to force, or ""
// to let ffmpeg probe. MP4-family containers need seekable input, so they
// always go through probing.
func demuxerName(f types.Format) string {
	switch f {
	case types.FormatWAV:
		return "wav"
	case types.FormatMP3:
		return "mp3"
	case types.FormatOgg:
		return "ogg"
	case types.FormatFLAC:
		return "flac"
	case types.FormatAIFF:
		return "aiff"
	default:
		return ""
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
