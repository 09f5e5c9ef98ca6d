// Package rng provides the seeded xorshift128+ generator used by the
// optimizer. Identical seeds yield identical streams on every platform.
package rng

const (
	seedBase0 uint64 = 0xf2e6bcd65ef0803c
	seedBase1 uint64 = 0xc51b10664c184979
)

// Source is a xorshift128+ generator. It satisfies rand.Source from
// math/rand/v2. The zero value is not usable; call New.
type Source struct {
	s0, s1 uint64
}

// New returns a generator seeded with the two words.
func New(seed0, seed1 uint64) *Source {
	r := &Source{}
	r.Seed(seed0, seed1)
	return r
}

// Seed resets the state. A zero word selects the base constant so the state
// is never all zero.
func (r *Source) Seed(seed0, seed1 uint64) {
	r.s0 = seedBase0
	if seed0 != 0 {
		r.s0 ^= seed0
	}
	r.s1 = seedBase1
	if seed1 != 0 {
		r.s1 ^= seed1
	}
	if r.s0 == 0 && r.s1 == 0 {
		r.s0 = seedBase0
	}
}

// Uint64 returns the next value of the stream.
func (r *Source) Uint64() uint64 {
	a, b := r.s0, r.s1
	r.s0 = b
	a ^= a << 23
	a ^= a >> 17
	a ^= b ^ (b >> 26)
	r.s1 = a
	return r.s0 + a
}

// Float64 returns a uniform value in [0, 1) built from the top 53 bits.
func (r *Source) Float64() float64 {
	return float64(r.Uint64()>>11) * (1.0 / (1 << 53))
}

// Bernoulli reports true with probability p.
func (r *Source) Bernoulli(p float64) bool { return r.Float64() < p }

// State returns the internal words, used to checkpoint a run.
func (r *Source) State() (uint64, uint64) { return r.s0, r.s1 }
