// RNG utilities shared by the toy and bias machinery.
//
// This file centralizes deterministic random generation for the engine.
//
// Goals:
//   - Determinism: same seed means identical toy batches across platforms.
//   - Encapsulation: a single RNG factory; no time-based sources hidden anywhere.
//   - Independence: cloned engines get decorrelated substreams, never a
//     shared generator.
//
// Concurrency:
//   - math/rand.Rand is NOT goroutine-safe. Do not share a *rand.Rand across
//     goroutines; give each engine (or each Clone) its own stream.
package unfold

import "math/rand"

// defaultRNGSeed is the fixed "zero" seed used when callers pass seed==0.
// The value is arbitrary but stable to keep reproducible defaults.
const defaultRNGSeed int64 = 1

// rngFromSeed returns a deterministic *rand.Rand.
// Policy: seed==0 uses defaultRNGSeed; otherwise the provided seed verbatim.
//
// Complexity: O(1).
func rngFromSeed(seed int64) *rand.Rand {
	s := seed
	if s == 0 {
		s = defaultRNGSeed
	}
	return rand.New(rand.NewSource(s))
}

// deriveSeed mixes a parent seed and a stream identifier into a new 64-bit
// seed with a SplitMix64-style avalanche, so derived streams are
// decorrelated even for adjacent stream ids.
//
// Complexity: O(1).
func deriveSeed(parent int64, stream uint64) int64 {
	// SplitMix64 finalizer constants (Vigna 2014).
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// deriveRNG creates an independent deterministic stream from a base RNG and
// a stream identifier. If base==nil the default seed is the parent.
// base.Int63() is consumed once so repeated derivations with the same
// stream id still differ.
//
// Complexity: O(1).
func deriveRNG(base *rand.Rand, stream uint64) *rand.Rand {
	parent := defaultRNGSeed
	if base != nil {
		parent = base.Int63()
	}
	return rand.New(rand.NewSource(deriveSeed(parent, stream)))
}
