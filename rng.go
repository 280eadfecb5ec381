package terashuf

import "math/rand/v2"

// RNG provides seedable, unbiased uniform draws over [0, n). It wraps
// math/rand/v2's PCG source: same family the teacher uses in cmd/bench and
// every _test.go helper (rand.New(rand.NewPCG(...))), and one that Go's
// standard library already guarantees is unbiased for IntN/Uint64N — unlike
// C's rand() % n, which is exactly what spec.md §4.I and §9 warn against.
type RNG struct {
	r *rand.Rand
}

// NewRNG seeds a generator from a single 64-bit seed, splitting it into the
// two PCG seed words via a fixed bit rotation so that nearby seed values
// don't collide on adjacent internal states.
func NewRNG(seed uint64) *RNG {
	lo := seed
	hi := seed<<32 | seed>>32
	return &RNG{r: rand.New(rand.NewPCG(hi, lo))}
}

// UniformInt returns a value in [0, n) with no modulo bias. Panics if n <= 0,
// matching math/rand/v2's own contract.
func (g *RNG) UniformInt(n int64) int64 {
	return g.r.Int64N(n)
}

// ShuffleIndex performs an in-place Fisher-Yates shuffle of idx, driven by
// this generator. Every permutation of idx is equally likely, conditional
// on the RNG sequence, matching spec.md §4.D's uniformity guarantee.
func (g *RNG) ShuffleIndex(idx []int64) {
	for i := len(idx) - 1; i > 0; i-- {
		j := g.UniformInt(int64(i) + 1)
		idx[i], idx[j] = idx[j], idx[i]
	}
}
