// Package rng wraps math/rand the way the teacher pack's algorithm packages
// do: a Source is constructed once from an explicit seed and handed to every
// consumer, never a package-global generator (spec.md §9's "global
// pseudo-state" note). Sub derives reproducible per-worker substreams for
// the engine's bounded parallel phases (spec.md §5).
package rng

import "math/rand"

// substreamPrime spaces worker seeds far enough apart that their generated
// sequences don't visibly overlap for the population sizes this engine
// targets.
const substreamPrime = 1_000_003

// Source is a seeded, reproducible random source.
type Source struct {
	seed int64
}

// New returns a Source seeded with seed.
func New(seed int64) *Source {
	return &Source{seed: seed}
}

// Rand returns a fresh *rand.Rand over this source's seed. Safe to call
// repeatedly; each call yields an independent generator seeded identically,
// which is only safe because callers use it for a single serial run.
func (s *Source) Rand() *rand.Rand {
	return rand.New(rand.NewSource(s.seed))
}

// Sub returns an independent, reproducible *rand.Rand for parallel worker
// workerIdx. Two calls with the same workerIdx on a Source built from the
// same seed always produce the same sequence.
func (s *Source) Sub(workerIdx int) *rand.Rand {
	return rand.New(rand.NewSource(s.seed + int64(workerIdx)*substreamPrime))
}
