// Package random provides a small deterministic pseudo random generator
// used to drive probabilistic balancing decisions.
package random

const (
	modulus    = 2147483647 // 2^31 - 1
	multiplier = 16807
)

// Random is a Lehmer linear congruential generator. The zero value is not
// usable; construct one with New. It is not safe for concurrent use.
type Random struct {
	seed uint32
}

// New returns a generator seeded with s. The seed is reduced to the valid
// range, with degenerate values (0 and 2^31-1, which would make the
// sequence collapse) replaced by 1, so any uint32 is an acceptable seed.
func New(s uint32) *Random {
	r := &Random{seed: s & 0x7fffffff}
	if r.seed == 0 || r.seed == modulus {
		r.seed = 1
	}
	return r
}

// Next returns the next pseudo random number in [1, 2^31-2].
func (r *Random) Next() uint32 {
	// seed = (seed * multiplier) % modulus without overflowing 64 bits,
	// using the identity x % (2^31-1) = (x >> 31) + (x & (2^31-1)),
	// applied once followed by a single correction.
	product := uint64(r.seed) * multiplier
	r.seed = uint32((product >> 31) + (product & modulus))
	if r.seed > modulus {
		r.seed -= modulus
	}
	return r.seed
}

// Uniform returns a pseudo random number in [0, n-1]. n must be > 0.
func (r *Random) Uniform(n int) uint32 {
	return r.Next() % uint32(n)
}

// OneIn reports true with probability roughly 1/n. n must be > 0.
func (r *Random) OneIn(n int) bool {
	return r.Next()%uint32(n) == 0
}

// Skewed picks a base in [0, maxLog] with equal probability and returns a
// value uniform in [0, 2^base-1]. Smaller numbers are therefore much more
// likely than large ones.
func (r *Random) Skewed(maxLog int) uint32 {
	return r.Uniform(1 << r.Uniform(maxLog+1))
}
