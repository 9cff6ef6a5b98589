// Package types holds the value types and error kinds shared by the
// anonymization pipeline packages. The root package re-exports the error
// types to keep the public API surface in one place.
package types

import "time"

// PCM is a decoded sample buffer with explicit technical parameters.
//
// PCM exists only between the decode and encode halves of the format
// standardizer. It carries no container structure and no metadata, which is
// what makes the decode/re-encode round trip strip every input-side field
// by construction. It is discarded when the pipeline returns.
type PCM struct {
	Data       []byte
	SampleRate int
	Channels   int
	BitDepth   int
}

// Duration returns the playing time of the buffer, or zero when the
// parameters are incomplete.
func (p PCM) Duration() time.Duration {
	bytesPerSecond := p.SampleRate * p.Channels * p.BitDepth / 8
	if bytesPerSecond <= 0 {
		return 0
	}
	return time.Duration(float64(len(p.Data)) / float64(bytesPerSecond) * float64(time.Second))
}
