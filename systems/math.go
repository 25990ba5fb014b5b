package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// clamp bounds v to [lo, hi]. NaN maps to lo.
func clamp(v, lo, hi float64) float64 {
	if !(v >= lo) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// wrap maps v into [0, size). NaN maps to 0.
func wrap(v, size float64) float64 {
	if size <= 0 {
		return 0
	}
	m := math.Mod(v, size)
	if m < 0 {
		m += size
	}
	if !(m >= 0 && m < size) {
		// Mod of a tiny negative can round up to size; NaN lands here too.
		return 0
	}
	return m
}

// limit scales v down so its length does not exceed maxLen.
func limit(v r2.Vec, maxLen float64) r2.Vec {
	n2 := r2.Norm2(v)
	if n2 <= maxLen*maxLen || n2 == 0 {
		return v
	}
	return r2.Scale(maxLen/math.Sqrt(n2), v)
}

// unit returns v normalized, or the zero vector for a zero input.
func unit(v r2.Vec) r2.Vec {
	if v.X == 0 && v.Y == 0 {
		return r2.Vec{}
	}
	return r2.Unit(v)
}

// steer returns the force that turns vel toward desired.
func steer(desired, vel r2.Vec) r2.Vec {
	return r2.Sub(desired, vel)
}
