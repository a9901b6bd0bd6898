package engine

import "golang.org/x/exp/rand"

// RNG is a seeded source with position tracking. Position counts draws,
// so a saved game resumes with the same sequence of rolls.
type RNG struct {
	seed uint64
	src  *rand.Rand
	pos  int64
}

// NewRNG creates a new deterministic RNG from a seed.
func NewRNG(seed uint64) *RNG {
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// Roll returns a random integer in [0, sides). Each roll takes exactly
// one draw from the source.
func (r *RNG) Roll(sides int) int {
	if sides <= 1 {
		return 0
	}
	r.pos++
	return int(r.src.Uint64() % uint64(sides))
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() uint64 {
	return r.seed
}

// Position returns the number of draws made since creation.
func (r *RNG) Position() int64 {
	return r.pos
}

// RestoreRNG creates an RNG and advances it to the given position.
func RestoreRNG(seed uint64, position int64) *RNG {
	rng := NewRNG(seed)
	for i := int64(0); i < position; i++ {
		rng.src.Uint64()
	}
	rng.pos = position
	return rng
}
