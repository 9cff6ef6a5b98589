// Package ttsrouter anonymizes synthesized speech audio.
//
// Audio returned by text-to-speech providers carries identifying
// byte-level artifacts: container metadata frames, encoder info headers,
// vendor strings, and tag blocks that reveal which engine produced the
// clip. This package strips all of them while leaving the audible
// content untouched.
//
// # Quick Start
//
//	ff := ttsrouter.NewFFmpegCodec("ffmpeg", 30*time.Second, logger)
//	pipe := ttsrouter.New(ff, ttsrouter.WithLogger(logger))
//
//	clean, err := pipe.Process(ctx, raw, ttsrouter.FormatMP3)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// The result is always a constant-bitrate mono MP3 at 44.1 kHz with no
// metadata segments and no recoverable provider signatures.
//
// # Pipeline
//
// Process runs four stages in order:
//
//  1. Decode the input to raw PCM through an external codec.
//  2. Re-encode the PCM to the canonical MP3 profile. This discards the
//     original container along with everything embedded in it.
//  3. Parse the fresh MP3 into a frame index that classifies every byte
//     as audio frame, tag block, info-frame payload, or unknown gap.
//  4. Zero every non-audio byte and scrub residual text signatures.
//
// A failure in any stage aborts the run and surfaces as a
// PipelineError naming the stage; no partially scrubbed audio is ever
// returned.
//
// # Error Handling
//
// All failures are typed and inspectable with errors.As:
//
//	var te *ttsrouter.TimeoutError
//	if errors.As(err, &te) {
//		log.Printf("codec exceeded %s during %s", te.Limit, te.Op)
//	}
//
// See DecodeError, EncodeError, MalformedStreamError, TimeoutError and
// PipelineError.
//
// # Concurrency
//
// A Pipeline is safe for concurrent use. Codec subprocess invocations
// are bounded by a semaphore sized with WithMaxConcurrent; parsing and
// sanitizing are pure in-memory transforms and run unbounded.
package ttsrouter
