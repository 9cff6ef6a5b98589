package ttsrouter

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	id3v2 "github.com/bogem/id3v2/v2"
	mdtag "github.com/dhowden/tag"
	"github.com/rs/zerolog"

	"github.com/TTS-AGI/tts-router-v2/internal/types"
)

// The exported Codec alias must be satisfiable with exported types
// alone so callers can supply their own implementation.
var _ Codec = (*fakeCodec)(nil)

// fakeCodec stands in for the ffmpeg subprocess so pipeline tests run
// without external binaries. Whatever encode returns flows into the
// parse and sanitize stages for real.
type fakeCodec struct {
	decodeErr   error
	encodeErr   error
	encoded     []byte
	blockDecode bool

	active  atomic.Int64
	maxSeen atomic.Int64
	mu      sync.Mutex
}

func (f *fakeCodec) DecodeToPCM(ctx context.Context, raw []byte, hint types.Format) (types.PCM, error) {
	cur := f.active.Add(1)
	defer f.active.Add(-1)
	f.mu.Lock()
	if cur > f.maxSeen.Load() {
		f.maxSeen.Store(cur)
	}
	f.mu.Unlock()
	time.Sleep(2 * time.Millisecond)

	if f.blockDecode {
		<-ctx.Done()
	}
	if err := ctx.Err(); err != nil {
		return types.PCM{}, err
	}
	if f.decodeErr != nil {
		return types.PCM{}, f.decodeErr
	}
	return types.PCM{Data: []byte{0, 0}, SampleRate: 44100, Channels: 1, BitDepth: 16}, nil
}

func (f *fakeCodec) EncodeFromPCM(ctx context.Context, pcm types.PCM) ([]byte, error) {
	if f.encodeErr != nil {
		return nil, f.encodeErr
	}
	return append([]byte(nil), f.encoded...), nil
}

// buildFrame returns a valid MPEG1 Layer III frame: 128 kbps, 44.1 kHz,
// mono, 417 bytes (418 padded).
func buildFrame(pad bool) []byte {
	n := 417
	b2 := byte(0x90)
	if pad {
		n = 418
		b2 = 0x92
	}
	f := make([]byte, n)
	f[0], f[1], f[2], f[3] = 0xFF, 0xFB, b2, 0xC0
	for i := 4; i < n; i++ {
		f[i] = 0xAA
	}
	return f
}

// buildInfoFrame returns the same frame with a Xing marker and an
// encoder string in its payload, the shape LAME writes.
func buildInfoFrame() []byte {
	f := buildFrame(false)
	copy(f[4+17:], "Xing")
	copy(f[4+17+120:], "LAME3.100")
	return f
}

func buildID3v1() []byte {
	t := make([]byte, 128)
	copy(t, "TAG")
	copy(t[33:], "ElevenLabs-TTS")
	return t
}

// taggedMP3 is what a freshly encoded but unsanitized stream looks
// like: info frame, audio frames, trailing v1 tag.
func taggedMP3() []byte {
	var buf bytes.Buffer
	buf.Write(buildInfoFrame())
	buf.Write(buildFrame(false))
	buf.Write(buildFrame(true))
	buf.Write(buildID3v1())
	return buf.Bytes()
}

func TestProcess_EndToEnd(t *testing.T) {
	in := taggedMP3()
	fc := &fakeCodec{encoded: in}
	pipe := New(fc)

	out, err := pipe.Process(context.Background(), []byte("provider audio"), FormatWAV)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("length changed: got %d, want %d", len(out), len(in))
	}
	for _, tok := range []string{"Xing", "LAME", "ElevenLabs", "TAG"} {
		if bytes.Contains(out, []byte(tok)) {
			t.Errorf("output still contains %q", tok)
		}
	}
	// Audio frame headers and payloads must survive untouched.
	if !bytes.Equal(out[417:417+417], in[417:417+417]) {
		t.Error("second frame modified")
	}
	if out[0] != 0xFF || out[1] != 0xFB {
		t.Error("info frame header bytes modified")
	}
	if bytes.Equal(out, in) {
		t.Error("output identical to unsanitized stream")
	}
}

// TestProcess_ID3v2TagStripped writes a real ID3v2 tag the way an
// encoder would and checks that no metadata reader can recover anything
// from the sanitized stream.
func TestProcess_ID3v2TagStripped(t *testing.T) {
	tag := id3v2.NewEmptyTag()
	tag.SetArtist("ElevenLabs-TTS")
	tag.SetTitle("synthesis output")
	tag.AddTextFrame("TSSE", tag.DefaultEncoding(), "Lavf61.1.100")

	var buf bytes.Buffer
	if _, err := tag.WriteTo(&buf); err != nil {
		t.Fatalf("writing tag: %v", err)
	}
	buf.Write(buildFrame(false))
	buf.Write(buildFrame(false))
	buf.Write(buildID3v1())

	fc := &fakeCodec{encoded: buf.Bytes()}
	pipe := New(fc)

	out, err := pipe.Process(context.Background(), []byte("x"), FormatMP3)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if md, err := mdtag.ReadFrom(bytes.NewReader(out)); err == nil {
		t.Errorf("metadata still readable after sanitization: artist=%q", md.Artist())
	}
	for _, tok := range []string{"ElevenLabs", "TSSE", "Lavf", "synthesis"} {
		if bytes.Contains(out, []byte(tok)) {
			t.Errorf("output still contains %q", tok)
		}
	}
}

func TestProcess_DecodeFailure(t *testing.T) {
	fc := &fakeCodec{decodeErr: &types.DecodeError{Format: types.FormatOgg, Reason: "corrupt page"}}
	pipe := New(fc)

	_, err := pipe.Process(context.Background(), []byte("x"), FormatOgg)
	var pe *PipelineError
	if !errors.As(err, &pe) {
		t.Fatalf("want *PipelineError, got %T", err)
	}
	if pe.Stage != StageDecode {
		t.Errorf("Stage = %q, want %q", pe.Stage, StageDecode)
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Error("DecodeError not reachable through errors.As")
	}
}

func TestProcess_EncodeFailure(t *testing.T) {
	fc := &fakeCodec{encodeErr: &types.EncodeError{Reason: "encoder exited"}}
	pipe := New(fc)

	_, err := pipe.Process(context.Background(), []byte("x"), FormatUnknown)
	var pe *PipelineError
	if !errors.As(err, &pe) {
		t.Fatalf("want *PipelineError, got %T", err)
	}
	if pe.Stage != StageEncode {
		t.Errorf("Stage = %q, want %q", pe.Stage, StageEncode)
	}
}

func TestProcess_ParseFailure(t *testing.T) {
	// Encoder output with no recognizable frames.
	fc := &fakeCodec{encoded: bytes.Repeat([]byte{0x00}, 2048)}
	pipe := New(fc)

	_, err := pipe.Process(context.Background(), []byte("x"), FormatUnknown)
	var pe *PipelineError
	if !errors.As(err, &pe) {
		t.Fatalf("want *PipelineError, got %T", err)
	}
	if pe.Stage != StageParse {
		t.Errorf("Stage = %q, want %q", pe.Stage, StageParse)
	}
	var me *MalformedStreamError
	if !errors.As(err, &me) {
		t.Error("MalformedStreamError not reachable through errors.As")
	}
}

func TestProcess_TimeoutPropagates(t *testing.T) {
	fc := &fakeCodec{decodeErr: &types.TimeoutError{Op: "decode", Limit: 30 * time.Second}}
	pipe := New(fc)

	_, err := pipe.Process(context.Background(), []byte("x"), FormatMP3)
	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("want *TimeoutError inside the chain, got %v", err)
	}
	if te.Op != "decode" {
		t.Errorf("Op = %q, want %q", te.Op, "decode")
	}
}

func TestProcess_CanceledContext(t *testing.T) {
	fc := &fakeCodec{encoded: taggedMP3()}
	pipe := New(fc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pipe.Process(ctx, []byte("x"), FormatMP3)
	if err == nil {
		t.Fatal("want error from canceled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("chain does not contain context.Canceled: %v", err)
	}
}

func TestProcess_TimeoutOption(t *testing.T) {
	fc := &fakeCodec{encoded: taggedMP3(), blockDecode: true}
	pipe := New(fc, WithTimeout(20*time.Millisecond))

	_, err := pipe.Process(context.Background(), []byte("x"), FormatMP3)
	if err == nil {
		t.Fatal("want error from expired run deadline")
	}
	var pe *PipelineError
	if !errors.As(err, &pe) {
		t.Fatalf("want *PipelineError, got %T", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("chain does not contain context.DeadlineExceeded: %v", err)
	}
}

func TestProcess_ConcurrencyBounded(t *testing.T) {
	fc := &fakeCodec{encoded: taggedMP3()}
	pipe := New(fc, WithMaxConcurrent(2))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := pipe.Process(context.Background(), []byte("x"), FormatMP3); err != nil {
				t.Errorf("Process: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := fc.maxSeen.Load(); got > 2 {
		t.Errorf("observed %d concurrent codec calls, want at most 2", got)
	}
}

func TestProcessBase64_RoundTrip(t *testing.T) {
	fc := &fakeCodec{encoded: taggedMP3()}
	pipe := New(fc)

	in := base64.StdEncoding.EncodeToString([]byte("provider audio"))
	out, err := pipe.ProcessBase64(context.Background(), in, FormatWAV)
	if err != nil {
		t.Fatalf("ProcessBase64: %v", err)
	}
	decoded, err := base64.StdEncoding.DecodeString(out)
	if err != nil {
		t.Fatalf("output is not valid base64: %v", err)
	}
	if len(decoded) != len(taggedMP3()) {
		t.Errorf("decoded length = %d, want %d", len(decoded), len(taggedMP3()))
	}
}

func TestNewFFmpegCodec(t *testing.T) {
	c := NewFFmpegCodec("", 5*time.Second, zerolog.Nop())
	if c == nil {
		t.Fatal("NewFFmpegCodec returned nil")
	}
	// Empty input fails without spawning a subprocess.
	if _, err := c.DecodeToPCM(context.Background(), nil, FormatUnknown); err == nil {
		t.Error("DecodeToPCM(nil) did not fail")
	}
}

func TestProcessBase64_BadInput(t *testing.T) {
	pipe := New(&fakeCodec{})

	_, err := pipe.ProcessBase64(context.Background(), "not base64!!!", FormatUnknown)
	var pe *PipelineError
	if !errors.As(err, &pe) {
		t.Fatalf("want *PipelineError, got %T", err)
	}
	if pe.Stage != StageDecode {
		t.Errorf("Stage = %q, want %q", pe.Stage, StageDecode)
	}
}
