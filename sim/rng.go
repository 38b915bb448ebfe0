// Package sim implements the deterministic simulation core: the seeded RNG,
// frequency sketch, environment/history synthesis, alert stream generation,
// and the fixed-step simulation engine that ties them together.
package sim

// === RNG ===

// RNG is a Mulberry32 pseudo-random generator producing floats in [0, 1).
// Two RNGs constructed from the same state produce identical sequences —
// this is the foundation of the whole simulator's reproducibility story.
//
// Thread-safety: not safe for concurrent use. Each simulation run owns
// exactly one RNG (plus any forked sub-streams), consumed from a single
// goroutine.
type RNG struct {
	state uint32
}

// NewRNG constructs an RNG from a raw 32-bit state.
func NewRNG(state uint32) *RNG {
	return &RNG{state: state}
}

// NewSeededRNG constructs an RNG by hashing a seed string (see HashSeed).
// Identical seed strings always yield identical streams.
func NewSeededRNG(seed string) *RNG {
	return NewRNG(HashSeed(seed))
}

// Next returns the next pseudo-random float64 in [0, 1).
func (r *RNG) Next() float64 {
	r.state += 0x6D2B79F5
	s := r.state
	t := (s ^ (s >> 15)) * (s | 1)
	t ^= t + (t^(t>>7))*(t|61)
	t ^= t >> 14
	return float64(t) / 4294967296.0
}

// Intn returns a pseudo-random integer in [0, n). Panics if n <= 0.
func (r *RNG) Intn(n int) int {
	if n <= 0 {
		panic("sim: Intn called with n <= 0")
	}
	return int(r.Next() * float64(n))
}

// ForkSeed composes the seed string of a sub-stream labelled for a named
// subsystem (e.g. "env", "weather", "anomaly", "pf"). Per spec, derivative
// streams are seeded from hash(seed + "|" + label); every caller composes
// that string here so labels are derived the same way.
func ForkSeed(seed, label string) string {
	return seed + "|" + label
}

// NewForkedRNG constructs a labelled sub-stream RNG from a base seed
// string. Equivalent to NewSeededRNG(ForkSeed(seed, label)).
func NewForkedRNG(seed, label string) *RNG {
	return NewSeededRNG(ForkSeed(seed, label))
}

// === Seed hashing ===

// HashSeed hashes a seed string to a 32-bit state per spec §4.1. This is
// the xmur3-style mixing function: repeated imul + rotate-left-13 over
// each code point, seeded with the string length.
func HashSeed(s string) uint32 {
	h := uint32(1779033703) ^ uint32(len(s))
	for _, c := range s {
		h = (h ^ uint32(c)) * 3432918353
		h = rotl32(h, 13)
	}
	return h
}

func rotl32(x uint32, r uint32) uint32 {
	return (x << r) | (x >> (32 - r))
}
