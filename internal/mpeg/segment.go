package mpeg

// SegmentKind classifies one span of the standardized byte stream.
type SegmentKind int

const (
	// SegFrame is a valid, self-describing MPEG audio frame. Never sanitized.
	SegFrame SegmentKind = iota
	// SegLeadingTag is an ID3v2 tag at the start of the buffer, spanning
	// exactly the size its own header declares.
	SegLeadingTag
	// SegTrailingTag is a fixed-size tag block at end of buffer: a 128-byte
	// ID3v1 tag or an APE tag located via its footer.
	SegTrailingTag
	// SegInfoPayload is the payload of a structurally valid first frame whose
	// content is a recognized info header (Xing/Info/VBRI). The 4 mandatory
	// header bytes are kept as a frame so the stream's frame count is
	// preserved for decoders that rely on it for duration estimation.
	SegInfoPayload
	// SegGap is any byte run that is neither a valid frame nor a recognized
	// tag structure, including false sync matches.
	SegGap
)

// String returns the segment kind name.
func (k SegmentKind) String() string {
	switch k {
	case SegFrame:
		return "frame"
	case SegLeadingTag:
		return "leadingTag"
	case SegTrailingTag:
		return "trailingTag"
	case SegInfoPayload:
		return "infoFramePayload"
	case SegGap:
		return "unknownGap"
	default:
		return "invalid"
	}
}

// Sanitizable reports whether the sanitizer may overwrite bytes of this kind.
func (k SegmentKind) Sanitizable() bool {
	return k != SegFrame
}

// Segment is one entry of a FrameIndex: a byte range plus its classification.
// Header is populated only for SegFrame entries.
type Segment struct {
	Offset int
	Length int
	Kind   SegmentKind
	Header FrameHeader
}

// End returns the exclusive end offset of the segment.
func (s Segment) End() int {
	return s.Offset + s.Length
}

// FrameIndex is an ordered sequence of segments partitioning the entire byte
// range of a standardized stream: no gap between consecutive entries and no
// overlap.
type FrameIndex []Segment

// FrameCount returns the number of audio frame entries in the index.
func (idx FrameIndex) FrameCount() int {
	n := 0
	for _, s := range idx {
		if s.Kind == SegFrame {
			n++
		}
	}
	return n
}

// FirstFrame returns the header of the first audio frame entry. The second
// return is false when the index holds no frames.
func (idx FrameIndex) FirstFrame() (FrameHeader, bool) {
	for _, s := range idx {
		if s.Kind == SegFrame {
			return s.Header, true
		}
	}
	return FrameHeader{}, false
}
