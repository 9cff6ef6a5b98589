package types

import (
	"fmt"
	"time"
)

// DecodeError is returned when the input container cannot be decoded to PCM.
type DecodeError struct {
	Format Format
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s input: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode %s input: %s", e.Format, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError is returned when re-encoding PCM to the canonical MP3 profile fails.
type EncodeError struct {
	Reason string
	Err    error
}

func (e *EncodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("encode to MP3: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("encode to MP3: %s", e.Reason)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// MalformedStreamError indicates an internal inconsistency: the standardized
// stream yields no valid audio frames, or a sanitization span falls outside
// the buffer. Decoding already succeeded by this point, so either case is a
// defect rather than bad input.
type MalformedStreamError struct {
	Offset int
	Reason string
}

func (e *MalformedStreamError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("malformed MP3 stream at offset %d: %s", e.Offset, e.Reason)
	}
	return fmt.Sprintf("malformed MP3 stream: %s", e.Reason)
}

// TimeoutError is returned when an external codec invocation exceeds its
// deadline. The invocation is killed; it never hangs the request.
type TimeoutError struct {
	Op    string
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: codec invocation exceeded %s deadline", e.Op, e.Limit)
}

// PipelineError wraps the failure of a single pipeline stage. The pipeline
// never returns a partially processed buffer alongside it.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline stage %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
