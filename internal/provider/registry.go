package provider

import (
	"sort"
	"strings"
)

// Registry is an immutable name-to-provider map built once at startup.
// Construction is explicit: whatever set of providers the caller passes is
// the complete set for the life of the process, with no ambient mutable
// registration state.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds a registry from the given providers, keyed by lowercase
// name. A later provider with a duplicate name replaces the earlier one.
func NewRegistry(providers ...Provider) *Registry {
	m := make(map[string]Provider, len(providers))
	for _, p := range providers {
		m[strings.ToLower(p.Name())] = p
	}
	return &Registry{providers: m}
}

// Get returns the provider registered under name (case-insensitive).
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[strings.ToLower(name)]
	return p, ok
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	return len(r.providers)
}
