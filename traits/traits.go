// Package traits defines agent trait ranges, random generation and mutation.
package traits

import "github.com/pthm-cable/skirmish/components"

// Source is the random stream traits draw from.
type Source interface {
	Float64() float64
}

// Range is the closed interval a trait is valid in.
type Range struct {
	Min, Max float64
}

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Contains reports whether v lies in the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Valid trait ranges.
var (
	SpeedRange      = Range{Min: 0.5, Max: 2.0}
	VisionRange     = Range{Min: 0.5, Max: 2.0}
	AggressionRange = Range{Min: 0.0, Max: 1.0}
	StaminaRange    = Range{Min: 0.5, Max: 2.0}
)

// Founder draw ranges for multiplicative traits.
var founderRange = Range{Min: 0.8, Max: 1.2}

// Default returns neutral traits.
func Default() components.Traits {
	return components.Traits{Speed: 1, Vision: 1, Aggression: 0.5, Stamina: 1}
}

// Random draws founder traits. Draw order is fixed for determinism.
func Random(src Source) components.Traits {
	return components.Traits{
		Speed:      uniform(src, founderRange),
		Vision:     uniform(src, founderRange),
		Aggression: uniform(src, AggressionRange),
		Stamina:    uniform(src, founderRange),
	}
}

// Mutate returns a copy of t where each trait independently shifts, with
// probability rate, by a uniform delta in [-magnitude, magnitude] and is then
// clamped to its range.
func Mutate(t components.Traits, src Source, rate, magnitude float64) components.Traits {
	t.Speed = mutateOne(t.Speed, SpeedRange, src, rate, magnitude)
	t.Vision = mutateOne(t.Vision, VisionRange, src, rate, magnitude)
	t.Aggression = mutateOne(t.Aggression, AggressionRange, src, rate, magnitude)
	t.Stamina = mutateOne(t.Stamina, StaminaRange, src, rate, magnitude)
	return t
}

// Clamp forces every trait into its valid range.
func Clamp(t components.Traits) components.Traits {
	t.Speed = SpeedRange.Clamp(t.Speed)
	t.Vision = VisionRange.Clamp(t.Vision)
	t.Aggression = AggressionRange.Clamp(t.Aggression)
	t.Stamina = StaminaRange.Clamp(t.Stamina)
	return t
}

// Valid reports whether every trait lies in its range.
func Valid(t components.Traits) bool {
	return SpeedRange.Contains(t.Speed) &&
		VisionRange.Contains(t.Vision) &&
		AggressionRange.Contains(t.Aggression) &&
		StaminaRange.Contains(t.Stamina)
}

func mutateOne(v float64, r Range, src Source, rate, magnitude float64) float64 {
	if src.Float64() >= rate {
		return v
	}
	delta := (src.Float64()*2 - 1) * magnitude
	return r.Clamp(v + delta)
}

func uniform(src Source, r Range) float64 {
	return r.Min + src.Float64()*(r.Max-r.Min)
}

// TraitNames returns display names in field order.
func TraitNames() []string {
	return []string{"Speed", "Vision", "Aggression", "Stamina"}
}
