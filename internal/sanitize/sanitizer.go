// Package sanitize neutralizes identifying content in the non-frame regions
// of a standardized MP3 stream. It never writes inside audio frame spans and
// never changes the buffer length, so every offset computed by the parser
// stays valid after sanitization.
package sanitize

import (
	"bytes"

	"github.com/TTS-AGI/tts-router-v2/internal/mpeg"
	"github.com/TTS-AGI/tts-router-v2/internal/types"
)

// filler overwrites neutralized bytes. Zero sits outside the printable ASCII
// range, which makes every pass idempotent.
const filler = 0x00

// knownTokens is a defense-in-depth net of literal encoder and vendor
// signatures. The text and structural passes are the authoritative
// mechanisms; by the time this list runs, its matches should already be gone.
var knownTokens = [][]byte{
	[]byte("LAME"),
	[]byte("Xing"),
	[]byte("Info"),
	[]byte("VBRI"),
	[]byte("ID3"),
	[]byte("TAG+"),
	[]byte("APETAGEX"),
	[]byte("Lavf"),
	[]byte("Lavc"),
	[]byte("TSSE"),
	[]byte("TXXX"),
	[]byte("aigc"),
	[]byte("ContentProducer"),
	[]byte("HUABABSpeech"),
	[]byte("ElevenLabs"),
}

// Sanitize returns a copy of data with every sanitizable segment of idx
// neutralized. The input buffer is never mutated; the output has the same
// length as the input. A segment falling outside the buffer bounds is an
// internal inconsistency and yields MalformedStreamError.
func Sanitize(data []byte, idx mpeg.FrameIndex) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)

	for _, seg := range idx {
		if !seg.Kind.Sanitizable() {
			continue
		}
		if seg.Offset < 0 || seg.Length < 0 || seg.End() > len(out) {
			return nil, &types.MalformedStreamError{
				Offset: seg.Offset,
				Reason: "sanitization span exceeds buffer bounds",
			}
		}
		region := out[seg.Offset:seg.End()]
		scrubTextRuns(region)
		scrubStructures(region, seg.Kind)
		scrubTokens(region)
	}
	return out, nil
}

// scrubTextRuns overwrites every maximal run of four or more consecutive
// printable ASCII bytes, preserving the run's exact length so enclosing size
// fields stay consistent with actual content length.
func scrubTextRuns(region []byte) {
	runStart := -1
	flush := func(end int) {
		if runStart >= 0 && end-runStart >= 4 {
			zero(region[runStart:end])
		}
		runStart = -1
	}
	for i, b := range region {
		if b >= 0x20 && b <= 0x7E {
			if runStart < 0 {
				runStart = i
			}
		} else {
			flush(i)
		}
	}
	flush(len(region))
}

// scrubStructures neutralizes known binary-header shapes by their layout
// rather than by literal content, so previously-unseen identifying tokens
// are removed as long as they sit inside a recognizable structure.
//
// Tag and info-payload segments are tag structure in their entirety and are
// zeroed whole. Gaps are walked for embedded shapes: ID3v2 header layouts
// and short magics of the form four letters or three letters plus a digit.
func scrubStructures(region []byte, kind mpeg.SegmentKind) {
	if kind != mpeg.SegGap {
		zero(region)
		return
	}
	for i := 0; i < len(region); {
		if id3v2HeaderShape(region[i:]) {
			zero(region[i : i+10])
			i += 10
			continue
		}
		if i+4 <= len(region) && magicShape(region[i:i+4]) {
			zero(region[i : i+4])
			i += 4
			continue
		}
		if i+3 <= len(region) && (bytes.Equal(region[i:i+3], []byte("ID3")) || bytes.Equal(region[i:i+3], []byte("TAG"))) {
			zero(region[i : i+3])
			i += 3
			continue
		}
		i++
	}
}

// scrubTokens zeroes literal matches from the known-signature list.
func scrubTokens(region []byte) {
	for _, tok := range knownTokens {
		for {
			i := bytes.Index(region, tok)
			if i < 0 {
				break
			}
			zero(region[i : i+len(tok)])
		}
	}
}

// id3v2HeaderShape reports whether b starts with a structurally valid ID3v2
// tag header: magic, sane version bytes, and a synchsafe size field.
func id3v2HeaderShape(b []byte) bool {
	if len(b) < 10 || string(b[0:3]) != "ID3" {
		return false
	}
	if b[3] == 0xFF || b[4] == 0xFF {
		return false
	}
	for _, s := range b[6:10] {
		if s&0x80 != 0 {
			return false
		}
	}
	return true
}

// magicShape matches the 4-byte tag-magic pattern: all letters, or three
// letters followed by a digit (TAG+, APEV, Lavf58 prefixes and the like).
func magicShape(b []byte) bool {
	if !isAlpha(b[0]) || !isAlpha(b[1]) || !isAlpha(b[2]) {
		return false
	}
	return isAlpha(b[3]) || isDigit(b[3])
}

func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func zero(b []byte) {
	for i := range b {
		b[i] = filler
	}
}
