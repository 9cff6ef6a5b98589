// Package mpeg parses standardized MP3 byte streams into an ordered
// partition of audio frames and non-frame regions. The partition is the
// contract the sanitizer relies on: frame spans are never written to, and
// everything else is fair game.
package mpeg

// Version is the MPEG audio version encoded in a frame header.
type Version int

const (
	// MPEG1 is MPEG version 1 (ISO/IEC 11172-3).
	MPEG1 Version = iota
	// MPEG2 is MPEG version 2 (ISO/IEC 13818-3).
	MPEG2
	// MPEG25 is the unofficial MPEG 2.5 low-rate extension.
	MPEG25
)

// Layer is the MPEG audio layer encoded in a frame header.
type Layer int

const (
	// LayerI is MPEG Layer I.
	LayerI Layer = iota + 1
	// LayerII is MPEG Layer II.
	LayerII
	// LayerIII is MPEG Layer III (MP3 proper).
	LayerIII
)

// ChannelMode is the channel configuration encoded in a frame header.
type ChannelMode int

const (
	// Stereo is independent two-channel audio.
	Stereo ChannelMode = iota
	// JointStereo is mid/side or intensity coded stereo.
	JointStereo
	// DualChannel is two independent mono channels.
	DualChannel
	// Mono is single-channel audio.
	Mono
)

// Channels returns the channel count for the mode.
func (m ChannelMode) Channels() int {
	if m == Mono {
		return 1
	}
	return 2
}

// FrameHeader describes a valid, self-describing MPEG audio frame.
//
// Length is the full frame size in bytes, header included, computed from the
// standard per-layer formula. It equals the distance to the next frame sync
// in a well-formed stream.
type FrameHeader struct {
	Version     Version
	Layer       Layer
	Bitrate     int // bits per second
	SampleRate  int // Hz
	Padding     bool
	ChannelMode ChannelMode
	Length      int // bytes, including the 4-byte header
}

// Bitrate tables in kbps, indexed by the 4-bit bitrate field. Index 0 (free
// format) and 15 (reserved) are invalid here.
var (
	bitrateMPEG1LayerI   = [16]int{0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448, 0}
	bitrateMPEG1LayerII  = [16]int{0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384, 0}
	bitrateMPEG1LayerIII = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}
	bitrateMPEG2LayerI   = [16]int{0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256, 0}
	bitrateMPEG2LayerII  = [16]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0}
)

// Sample rate tables in Hz, indexed by the 2-bit sample rate field.
// Index 3 is reserved.
var (
	sampleRateMPEG1  = [4]int{44100, 48000, 32000, 0}
	sampleRateMPEG2  = [4]int{22050, 24000, 16000, 0}
	sampleRateMPEG25 = [4]int{11025, 12000, 8000, 0}
)

// hasSync reports whether the 11-bit frame synchronization pattern is
// present at the start of b.
func hasSync(b []byte) bool {
	return len(b) >= 2 && b[0] == 0xFF && b[1]&0xE0 == 0xE0
}

// parseFrameHeader validates the 4-byte header at the start of b against the
// permitted value tables and computes the frame length. It returns false for
// missing sync, reserved field values, free-format bitrate, or any other
// combination the tables reject.
func parseFrameHeader(b []byte) (FrameHeader, bool) {
	if len(b) < 4 || !hasSync(b) {
		return FrameHeader{}, false
	}

	var h FrameHeader

	switch (b[1] >> 3) & 0x3 {
	case 0:
		h.Version = MPEG25
	case 2:
		h.Version = MPEG2
	case 3:
		h.Version = MPEG1
	default: // 1 is reserved
		return FrameHeader{}, false
	}

	switch (b[1] >> 1) & 0x3 {
	case 1:
		h.Layer = LayerIII
	case 2:
		h.Layer = LayerII
	case 3:
		h.Layer = LayerI
	default: // 0 is reserved
		return FrameHeader{}, false
	}

	bitrateIdx := b[2] >> 4
	if bitrateIdx == 0 || bitrateIdx == 15 {
		return FrameHeader{}, false
	}
	kbps := 0
	if h.Version == MPEG1 {
		switch h.Layer {
		case LayerI:
			kbps = bitrateMPEG1LayerI[bitrateIdx]
		case LayerII:
			kbps = bitrateMPEG1LayerII[bitrateIdx]
		case LayerIII:
			kbps = bitrateMPEG1LayerIII[bitrateIdx]
		}
	} else {
		if h.Layer == LayerI {
			kbps = bitrateMPEG2LayerI[bitrateIdx]
		} else {
			kbps = bitrateMPEG2LayerII[bitrateIdx]
		}
	}
	if kbps == 0 {
		return FrameHeader{}, false
	}
	h.Bitrate = kbps * 1000

	sampleRateIdx := (b[2] >> 2) & 0x3
	if sampleRateIdx == 3 {
		return FrameHeader{}, false
	}
	switch h.Version {
	case MPEG1:
		h.SampleRate = sampleRateMPEG1[sampleRateIdx]
	case MPEG2:
		h.SampleRate = sampleRateMPEG2[sampleRateIdx]
	case MPEG25:
		h.SampleRate = sampleRateMPEG25[sampleRateIdx]
	}

	h.Padding = b[2]&0x02 != 0
	h.ChannelMode = ChannelMode(b[3] >> 6)

	h.Length = frameLength(h)
	if h.Length < 4 {
		return FrameHeader{}, false
	}
	return h, true
}

// frameLength computes the frame size in bytes from the header fields.
//
// Layer I frames carry 384 samples in 4-byte slots; Layers II and III carry
// 1152 samples, except Layer III under MPEG2/2.5 which carries 576.
func frameLength(h FrameHeader) int {
	pad := 0
	if h.Padding {
		pad = 1
	}
	switch h.Layer {
	case LayerI:
		return (12*h.Bitrate/h.SampleRate + pad) * 4
	case LayerIII:
		if h.Version != MPEG1 {
			return 72*h.Bitrate/h.SampleRate + pad
		}
		fallthrough
	default:
		return 144*h.Bitrate/h.SampleRate + pad
	}
}

// sideInfoLength returns the byte length of the Layer III side information
// block that sits between the frame header and the main data. Info headers
// (Xing/Info) are placed immediately after it.
func sideInfoLength(h FrameHeader) int {
	if h.Version == MPEG1 {
		if h.ChannelMode == Mono {
			return 17
		}
		return 32
	}
	if h.ChannelMode == Mono {
		return 9
	}
	return 17
}
