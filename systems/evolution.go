package systems

import (
	"math"

	"github.com/pthm-cable/skirmish/components"
	"github.com/pthm-cable/skirmish/config"
	"github.com/pthm-cable/skirmish/traits"
)

// Reproduction records one voluntary birth.
type Reproduction struct {
	ParentID     uint32
	ParentBefore float64
	ParentAfter  float64
	Child        AgentSpawn
}

// EvolutionResult summarizes one evolution phase.
type EvolutionResult struct {
	AgeDeaths    int
	EnergyDeaths int
	Live         int // live agents after deaths, before births

	// Births lists the children to acquire once the phase has finished, in
	// parent query order. The slice is reused by the next Update.
	Births []Reproduction
}

// EvolutionSystem handles reproduction, mutation and death.
type EvolutionSystem struct {
	births []Reproduction
}

// NewEvolutionSystem creates an evolution system.
func NewEvolutionSystem() *EvolutionSystem {
	return &EvolutionSystem{}
}

// Update runs one evolution phase. Children are returned as spawn requests;
// the caller acquires them after the phase because the world is locked for
// structural changes while the phase iterates.
func (s *EvolutionSystem) Update(env Env) EvolutionResult {
	cfg, rng := env.Config, env.RNG
	rc := &cfg.Reproduction
	s.births = s.births[:0]

	var res EvolutionResult

	query := env.Agents.Filter().Query()
	for query.Next() {
		_, _, _, _, energy, agent, _ := query.Get()
		if agent.ReproCooldown > 0 {
			agent.ReproCooldown--
		}
		if !energy.Alive {
			continue
		}
		switch {
		case cfg.Entity.MaxAge > 0 && energy.Age > cfg.Entity.MaxAge:
			energy.Alive = false
			res.AgeDeaths++
		case energy.Value <= 0:
			energy.Value = 0
			energy.Alive = false
			res.EnergyDeaths++
		default:
			res.Live++
		}
	}

	query = env.Agents.Filter().Query()
	for query.Next() {
		pos, _, _, tr, energy, agent, _ := query.Get()
		if !energy.Alive || agent.ReproCooldown > 0 || energy.Value <= rc.Threshold {
			continue
		}
		if res.Live+len(s.births) >= cfg.Population.MaxAgents {
			continue
		}

		before := energy.Value
		energy.Value -= rc.Cost
		agent.ReproCooldown = int32(rc.CooldownTicks)

		child := AgentSpawn{
			Traits:        traits.Mutate(*tr, rng, cfg.Mutation.TraitRate, cfg.Mutation.TraitMagnitude),
			Strategy:      MutateStrategy(agent.Strategy, rng, cfg.Mutation.StrategyRate),
			Energy:        rc.Cost * rc.ChildEnergyFraction,
			Generation:    agent.Generation + 1,
			ParentID:      agent.ID,
			ReproCooldown: int32(rc.CooldownTicks),
		}
		sin, cos := math.Sincos(rng.Angle())
		child.X, child.Y = Place(cfg, pos.X+cos*rc.SpawnOffset, pos.Y+sin*rc.SpawnOffset)
		child.WanderAngle = rng.Angle()

		s.births = append(s.births, Reproduction{
			ParentID:     agent.ID,
			ParentBefore: before,
			ParentAfter:  energy.Value,
			Child:        child,
		})
	}

	res.Births = s.births
	return res
}

// MutateStrategy returns s, or with probability rate a different strategy
// chosen uniformly from the rest of the set.
func MutateStrategy(s components.Strategy, rng *RNG, rate float64) components.Strategy {
	if !rng.Chance(rate) {
		return s
	}
	k := components.Strategy(rng.Intn(components.NumStrategies - 1))
	if k >= s {
		k++
	}
	return k
}

// RandomSpawn describes a fresh agent anywhere in the arena with founder
// traits, a strategy drawn from the spawn weights and the initial energy.
func RandomSpawn(cfg *config.Config, rng *RNG) AgentSpawn {
	x := rng.Range(0, cfg.World.Width)
	y := rng.Range(0, cfg.World.Height)
	return AgentSpawn{
		X:           x,
		Y:           y,
		Traits:      traits.Random(rng),
		Strategy:    components.Strategy(rng.Pick(cfg.Derived.SpawnWeights[:])),
		Energy:      cfg.Entity.InitialEnergy,
		WanderAngle: rng.Angle(),
	}
}

// EnforceFloor returns the spawns needed to lift live up to the configured
// minimum population. They bypass reproduction cost.
func EnforceFloor(cfg *config.Config, live int, rng *RNG) []AgentSpawn {
	missing := cfg.Population.MinAgents - live
	if missing <= 0 {
		return nil
	}
	spawns := make([]AgentSpawn, missing)
	for i := range spawns {
		spawns[i] = RandomSpawn(cfg, rng)
		spawns[i].Floor = true
	}
	return spawns
}

// Place maps a point into the arena according to the boundary mode.
func Place(cfg *config.Config, x, y float64) (float64, float64) {
	if cfg.Wrap() {
		return wrap(x, cfg.World.Width), wrap(y, cfg.World.Height)
	}
	return clamp(x, 0, cfg.World.Width), clamp(y, 0, cfg.World.Height)
}
