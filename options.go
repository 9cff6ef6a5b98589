package ttsrouter

import (
	"time"

	"github.com/rs/zerolog"
)

// DefaultMaxConcurrent bounds concurrent codec subprocesses when
// WithMaxConcurrent is not given.
const DefaultMaxConcurrent = 4

type options struct {
	maxConcurrent int64
	timeout       time.Duration
	log           zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*options)

// WithMaxConcurrent bounds the number of codec invocations the pipeline
// runs at once. Values below 1 are ignored.
func WithMaxConcurrent(n int64) Option {
	return func(o *options) {
		if n >= 1 {
			o.maxConcurrent = n
		}
	}
}

// WithTimeout bounds a whole Process run, queueing included. Zero, the
// default, leaves the run bounded only by the caller's context and the
// codec's own per-invocation deadline.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the logger used for per-run debug output. The default
// logger discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}
