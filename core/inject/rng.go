package inject

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand/v2"
)

// RNG supplies a deterministic pseudo-random stream from a stored seed.
// Two RNGs constructed with the same seed and subjected to the same call
// sequence produce identical outputs. The underlying generator has
// sequential internal state, so a single RNG must not be shared across
// concurrent callers.
type RNG struct {
	seed int64
	rng  *mathrand.Rand
}

// NewRNG returns an injector seeded with the given value.
func NewRNG(seed int64) *RNG {
	return &RNG{
		seed: seed,
		rng:  mathrand.New(mathrand.NewPCG(uint64(seed), uint64(seed))),
	}
}

// NewRandomRNG returns an injector with a securely generated seed. The seed
// is exposed via Seed so the caller can persist it into a replay manifest.
func NewRandomRNG() *RNG {
	var buf [8]byte
	// crypto/rand.Read never fails on supported platforms.
	_, _ = rand.Read(buf[:])
	return NewRNG(int64(binary.LittleEndian.Uint64(buf[:])))
}

// Seed returns the seed the stream was constructed from. Immutable for the
// injector's lifetime.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Float64 returns the next value in [0, 1).
func (r *RNG) Float64() float64 {
	return r.rng.Float64()
}

// IntN returns the next value in [0, n). Panics if n <= 0, matching the
// behavior of math/rand/v2.
func (r *RNG) IntN(n int) int {
	return r.rng.IntN(n)
}

// IntRange returns the next value in [lo, hi] inclusive. Panics if hi < lo.
func (r *RNG) IntRange(lo, hi int) int {
	return lo + r.rng.IntN(hi-lo+1)
}

// Shuffle deterministically permutes n elements using the provided swap
// function.
func (r *RNG) Shuffle(n int, swap func(i, j int)) {
	r.rng.Shuffle(n, swap)
}

// Choice returns one element of items drawn from the deterministic stream.
// All convenience derivations consume the same underlying stream, so mixing
// Float64, IntN, and Choice calls stays reproducible as long as the call
// sequence is fixed.
func Choice[T any](r *RNG, items []T) T {
	return items[r.IntN(len(items))]
}
