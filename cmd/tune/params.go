package main

import (
	"github.com/pthm-cable/skirmish/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name string  // config path, also the CSV column
	Min  float64 // lower bound
	Max  float64 // upper bound

	ref func(*config.Config) *float64
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

func payoffSpec(name string, idx int, lo, hi float64, entry func(*config.PayoffConfig) *[2]float64) ParamSpec {
	return ParamSpec{
		Name: name,
		Min:  lo,
		Max:  hi,
		ref:  func(c *config.Config) *float64 { return &entry(&c.Payoff)[idx] },
	}
}

// NewParamVector creates the standard set of tunable parameters: both
// sides of every payoff entry except flee/flee, plus the fight surcharge.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			payoffSpec("payoff.fight_fight[0]", 0, -30, 0, func(p *config.PayoffConfig) *[2]float64 { return &p.FightFight }),
			payoffSpec("payoff.fight_fight[1]", 1, -30, 0, func(p *config.PayoffConfig) *[2]float64 { return &p.FightFight }),
			payoffSpec("payoff.fight_share[0]", 0, 0, 40, func(p *config.PayoffConfig) *[2]float64 { return &p.FightShare }),
			payoffSpec("payoff.fight_share[1]", 1, -20, 0, func(p *config.PayoffConfig) *[2]float64 { return &p.FightShare }),
			payoffSpec("payoff.fight_flee[0]", 0, 0, 20, func(p *config.PayoffConfig) *[2]float64 { return &p.FightFlee }),
			payoffSpec("payoff.fight_flee[1]", 1, -10, 0, func(p *config.PayoffConfig) *[2]float64 { return &p.FightFlee }),
			payoffSpec("payoff.share_share[0]", 0, 0, 20, func(p *config.PayoffConfig) *[2]float64 { return &p.ShareShare }),
			payoffSpec("payoff.share_share[1]", 1, 0, 20, func(p *config.PayoffConfig) *[2]float64 { return &p.ShareShare }),
			payoffSpec("payoff.share_flee[0]", 0, -5, 10, func(p *config.PayoffConfig) *[2]float64 { return &p.ShareFlee }),
			payoffSpec("payoff.share_flee[1]", 1, -5, 10, func(p *config.PayoffConfig) *[2]float64 { return &p.ShareFlee }),
			{
				Name: "interaction.fight_surcharge",
				Min:  0,
				Max:  10,
				ref:  func(c *config.Config) *float64 { return &c.Interaction.FightSurcharge },
			},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// FromConfig reads the current parameter values out of cfg, clamped to the
// search bounds.
func (pv *ParamVector) FromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = *spec.ref(cfg)
	}
	return pv.Clamp(v)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg and renormalizes it.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		*pv.Specs[i].ref(cfg) = v
	}
	cfg.Normalize()
}
