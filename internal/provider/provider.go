// Package provider defines the fixed capability set every TTS provider
// implements and the immutable registry the service routes through. The
// pipeline treats all providers identically: whatever bytes come back are
// anonymized the same way.
package provider

import "context"

// Model describes one synthesis model a provider offers.
type Model struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Provider is the capability set of one TTS backend.
type Provider interface {
	// Name returns the lowercase identifier the provider registers under.
	Name() string

	// Models lists the synthesis models currently available.
	Models(ctx context.Context) ([]Model, error)

	// Synthesize converts text to speech with the given model (empty selects
	// the provider default). Returns the raw audio bytes exactly as the
	// backend produced them plus the declared container extension; callers
	// must anonymize before delivering them anywhere.
	Synthesize(ctx context.Context, text, modelID string) ([]byte, string, error)
}
