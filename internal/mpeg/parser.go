package mpeg

import (
	"encoding/binary"

	"github.com/TTS-AGI/tts-router-v2/internal/types"
)

const (
	id3v2HeaderSize = 10
	id3v1TagSize    = 128
	id3v1ExtSize    = 227
	apeFooterSize   = 32
)

// Parse scans a standardized MP3 byte stream and returns a FrameIndex
// partitioning the entire buffer: every byte belongs to exactly one segment.
//
// The scan looks for the 11-bit frame sync at each candidate offset,
// validates the header fields against the permitted value tables, and
// confirms the computed frame length by re-checking sync at the predicted
// next offset. A candidate that fails confirmation is a false positive: its
// first byte joins the surrounding gap and scanning resumes one byte ahead.
//
// Returns MalformedStreamError when no valid frame is found; the
// standardizer guarantees decodable audio, so that indicates a defect
// upstream rather than bad input.
func Parse(data []byte) (FrameIndex, error) {
	if len(data) == 0 {
		return nil, &types.MalformedStreamError{Reason: "empty buffer"}
	}

	var idx FrameIndex
	cur := 0

	if n := id3v2Span(data); n > 0 {
		idx = append(idx, Segment{Offset: 0, Length: n, Kind: SegLeadingTag})
		cur = n
	}

	trailing, scanEnd := trailingTagSpans(data, cur)

	gapStart := -1
	flushGap := func(end int) {
		if gapStart >= 0 {
			idx = append(idx, Segment{Offset: gapStart, Length: end - gapStart, Kind: SegGap})
			gapStart = -1
		}
	}

	frames := 0
	for cur < scanEnd {
		h, ok := parseFrameHeader(data[cur:scanEnd])
		if ok && cur+h.Length <= scanEnd {
			next := cur + h.Length
			confirmed := next == scanEnd || (next+2 <= scanEnd && hasSync(data[next:]))
			if confirmed {
				flushGap(cur)
				if frames == 0 && isInfoFrame(data[cur:cur+h.Length], h) {
					// Keep the mandatory header as a frame; the rest of the
					// pseudo-frame is sanitizable payload.
					idx = append(idx,
						Segment{Offset: cur, Length: 4, Kind: SegFrame, Header: h},
						Segment{Offset: cur + 4, Length: h.Length - 4, Kind: SegInfoPayload},
					)
				} else {
					idx = append(idx, Segment{Offset: cur, Length: h.Length, Kind: SegFrame, Header: h})
				}
				frames++
				cur = next
				continue
			}
		}
		if gapStart < 0 {
			gapStart = cur
		}
		cur++
	}
	flushGap(scanEnd)

	idx = append(idx, trailing...)

	if frames == 0 {
		return nil, &types.MalformedStreamError{Reason: "no valid audio frames"}
	}
	return idx, nil
}

// id3v2Span returns the length of an ID3v2 tag at the start of the buffer,
// or 0 when none is present. The span is the 10-byte header plus the
// synchsafe size the header declares, plus the optional footer.
func id3v2Span(data []byte) int {
	if len(data) < id3v2HeaderSize || string(data[0:3]) != "ID3" {
		return 0
	}
	// Version and size bytes must not have the high bit set.
	if data[3] == 0xFF || data[4] == 0xFF {
		return 0
	}
	for _, b := range data[6:10] {
		if b&0x80 != 0 {
			return 0
		}
	}
	n := id3v2HeaderSize + int(decodeSynchsafe(data[6:10]))
	if data[5]&0x10 != 0 {
		n += id3v2HeaderSize // footer, same size as the header
	}
	if n > len(data) {
		n = len(data)
	}
	return n
}

// decodeSynchsafe decodes a 4-byte synchsafe integer (7 bits per byte).
func decodeSynchsafe(b []byte) uint32 {
	return uint32(b[0]&0x7F)<<21 | uint32(b[1]&0x7F)<<14 | uint32(b[2]&0x7F)<<7 | uint32(b[3]&0x7F)
}

// trailingTagSpans detects tag blocks anchored at end of buffer: an ID3v1
// tag with its optional extended block, and an APE tag located by reading
// its footer backward from the end of the remaining audio span. Returns the
// segments in buffer order plus the exclusive end offset of the scannable
// audio region.
func trailingTagSpans(data []byte, start int) ([]Segment, int) {
	var spans []Segment
	end := len(data)

	if end-start >= id3v1TagSize && string(data[end-id3v1TagSize:end-id3v1TagSize+3]) == "TAG" {
		spans = append(spans, Segment{Offset: end - id3v1TagSize, Length: id3v1TagSize, Kind: SegTrailingTag})
		end -= id3v1TagSize

		// The enhanced variant puts a 227-byte "TAG+" block directly
		// before the standard tag.
		if end-start >= id3v1ExtSize && string(data[end-id3v1ExtSize:end-id3v1ExtSize+4]) == "TAG+" {
			spans = append([]Segment{{Offset: end - id3v1ExtSize, Length: id3v1ExtSize, Kind: SegTrailingTag}}, spans...)
			end -= id3v1ExtSize
		}
	}

	if n := apeSpan(data[start:end]); n > 0 {
		spans = append([]Segment{{Offset: end - n, Length: n, Kind: SegTrailingTag}}, spans...)
		end -= n
	}

	return spans, end
}

// apeSpan returns the total length of an APE tag whose footer ends at the end
// of data, or 0. APE footers carry the tag size (items plus footer) at offset
// 12 and a flags word at offset 20 whose top bit records whether a 32-byte
// header precedes the items.
func apeSpan(data []byte) int {
	if len(data) < apeFooterSize {
		return 0
	}
	footer := data[len(data)-apeFooterSize:]
	if string(footer[0:8]) != "APETAGEX" {
		return 0
	}
	size := int(binary.LittleEndian.Uint32(footer[12:16]))
	if size < apeFooterSize {
		return 0
	}
	flags := binary.LittleEndian.Uint32(footer[20:24])
	if flags&0x80000000 != 0 {
		size += apeFooterSize
	}
	if size > len(data) {
		return 0
	}
	return size
}

// isInfoFrame reports whether a structurally valid frame's payload encodes a
// recognized info-header shape: a Xing/Info marker directly after the Layer
// III side information block, or a VBRI marker at its fixed 32-byte offset.
func isInfoFrame(frame []byte, h FrameHeader) bool {
	off := 4 + sideInfoLength(h)
	if off+4 <= len(frame) {
		switch string(frame[off : off+4]) {
		case "Xing", "Info":
			return true
		}
	}
	// VBRI sits 32 bytes after the header regardless of channel mode.
	if 40 <= len(frame) && string(frame[36:40]) == "VBRI" {
		return true
	}
	return false
}
