// Package testutil provides shared helpers for ripple tests: fixed
// dispatch tokens and throwaway worlds with pre-built hierarchies.
package testutil

// StaticTokenGenerator returns the same dispatch token every time.
//
// Unlike dispatch.FixedGenerator, which hands out a finite sequence and
// panics when exhausted, this generator never runs out. Useful when a
// test dispatches an unknown number of events and only cares that they
// share one token.
//
// Thread-safety: stateless and safe for concurrent use.
type StaticTokenGenerator struct {
	token string
}

// NewStaticTokenGenerator creates a generator that always returns token.
// An empty token defaults to "test-pass-default".
func NewStaticTokenGenerator(token string) *StaticTokenGenerator {
	if token == "" {
		token = "test-pass-default"
	}
	return &StaticTokenGenerator{token: token}
}

// Generate returns the fixed token.
//
// Implements dispatch.TokenGenerator.
func (g *StaticTokenGenerator) Generate() string {
	return g.token
}
