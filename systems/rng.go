package systems

import (
	"math"
	"math/rand"
)

// RNG is the single seeded random source the game hands to every system.
// All stochastic decisions in a tick draw from it in a fixed order, so a
// seed plus a tick count fully determines the trajectory.
type RNG struct {
	seed int64
	r    *rand.Rand
}

// NewRNG creates a source seeded with seed.
func NewRNG(seed int64) *RNG {
	return &RNG{seed: seed, r: rand.New(rand.NewSource(seed))}
}

// Seed returns the seed of the current stream.
func (g *RNG) Seed() int64 { return g.seed }

// Reseed restarts the stream from seed.
func (g *RNG) Reseed(seed int64) {
	g.seed = seed
	g.r.Seed(seed)
}

// Float64 returns a value in [0, 1).
func (g *RNG) Float64() float64 { return g.r.Float64() }

// Range returns a value in [lo, hi).
func (g *RNG) Range(lo, hi float64) float64 {
	return lo + g.r.Float64()*(hi-lo)
}

// Intn returns a value in [0, n). n <= 0 yields 0.
func (g *RNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return g.r.Intn(n)
}

// Angle returns a heading in [0, 2π).
func (g *RNG) Angle() float64 {
	return g.r.Float64() * 2 * math.Pi
}

// Chance reports true with probability p. It always consumes one draw.
func (g *RNG) Chance(p float64) bool {
	return g.r.Float64() < p
}

// Pick returns an index drawn in proportion to weights. Non-positive
// weights are never picked; if none is positive the pick is uniform.
func (g *RNG) Pick(weights []float64) int {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if !(total > 0) || math.IsInf(total, 0) {
		return g.Intn(len(weights))
	}
	u := g.r.Float64() * total
	last := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		if u < w {
			return i
		}
		u -= w
	}
	return last
}
