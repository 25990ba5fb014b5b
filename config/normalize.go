package config

import (
	"fmt"
	"math"
	"sort"

	"github.com/pthm-cable/skirmish/components"
)

// Fallbacks used when a value is missing or unusable.
const (
	fallbackWidth     = 1280.0
	fallbackHeight    = 720.0
	fallbackDT        = 1.0 / 60.0
	fallbackMaxEnergy = 100.0
	fallbackVision    = 80.0
)

// Upper bounds on allocation-driving values.
const (
	// MaxGridDim is the most spatial index cells allowed along either axis.
	MaxGridDim = 1024
	// MaxEntities caps max_agents and the initial food count.
	MaxEntities = 100000
)

// normalizer records every adjustment it makes.
type normalizer struct {
	notes []string
}

func (n *normalizer) notef(format string, args ...interface{}) {
	n.notes = append(n.notes, fmt.Sprintf(format, args...))
}

// min clamps *v to at least lo. NaN is replaced by lo.
func (n *normalizer) min(name string, v *float64, lo float64) {
	if !(*v >= lo) {
		n.notef("%s: %v clamped to %v", name, *v, lo)
		*v = lo
	}
}

// between clamps *v to [lo, hi]. NaN is replaced by lo.
func (n *normalizer) between(name string, v *float64, lo, hi float64) {
	switch {
	case !(*v >= lo):
		n.notef("%s: %v clamped to %v", name, *v, lo)
		*v = lo
	case *v > hi:
		n.notef("%s: %v clamped to %v", name, *v, hi)
		*v = hi
	}
}

// positive replaces non-positive or non-finite *v with fallback.
func (n *normalizer) positive(name string, v *float64, fallback float64) {
	if !(*v > 0) || math.IsInf(*v, 0) {
		n.notef("%s: %v replaced by %v", name, *v, fallback)
		*v = fallback
	}
}

func (n *normalizer) minInt(name string, v *int, lo int) {
	if *v < lo {
		n.notef("%s: %d clamped to %d", name, *v, lo)
		*v = lo
	}
}

func (n *normalizer) betweenInt(name string, v *int, lo, hi int) {
	switch {
	case *v < lo:
		n.notef("%s: %d clamped to %d", name, *v, lo)
		*v = lo
	case *v > hi:
		n.notef("%s: %d clamped to %d", name, *v, hi)
		*v = hi
	}
}

func (n *normalizer) finite(name string, v *float64) {
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		n.notef("%s: %v replaced by 0", name, *v)
		*v = 0
	}
}

// Normalize clamps every field into its valid range, resolves fallbacks and
// computes derived values. It never fails; the adjustments it made are
// returned and kept in Derived.Adjustments.
func (c *Config) Normalize() []string {
	n := &normalizer{}

	if c.Version < 1 {
		c.Version = 1
	}

	// World
	n.positive("world.width", &c.World.Width, fallbackWidth)
	n.positive("world.height", &c.World.Height, fallbackHeight)
	if c.World.Boundary != BoundaryBounce && c.World.Boundary != BoundaryWrap {
		n.notef("world.boundary: %q replaced by %q", c.World.Boundary, BoundaryBounce)
		c.World.Boundary = BoundaryBounce
	}
	n.min("world.edge_margin", &c.World.EdgeMargin, 0)
	n.min("world.edge_force", &c.World.EdgeForce, 0)

	// Physics
	n.positive("physics.dt", &c.Physics.DT, fallbackDT)
	n.minInt("physics.max_steps_per_poll", &c.Physics.MaxStepsPerPoll, 1)
	n.between("physics.friction", &c.Physics.Friction, 0, 1)
	n.min("physics.max_force", &c.Physics.MaxForce, 0)
	n.min("physics.base_max_speed", &c.Physics.BaseMaxSpeed, 0)

	// Entity
	n.positive("entity.max_energy", &c.Entity.MaxEnergy, fallbackMaxEnergy)
	n.between("entity.initial_energy", &c.Entity.InitialEnergy, 0, c.Entity.MaxEnergy)
	n.min("entity.max_age", &c.Entity.MaxAge, 0)

	// Movement
	n.positive("movement.base_vision", &c.Movement.BaseVision, fallbackVision)
	n.min("movement.crowd_radius", &c.Movement.CrowdRadius, 0)
	n.min("movement.separation_weight", &c.Movement.SeparationWeight, 0)
	n.between("movement.low_energy_threshold", &c.Movement.LowEnergyThreshold, 0, c.Entity.MaxEnergy)
	n.between("movement.threat_aggression", &c.Movement.ThreatAggression, 0, 1)
	n.min("movement.slow_radius", &c.Movement.SlowRadius, 0)
	n.min("movement.wander_distance", &c.Movement.WanderDistance, 0)
	n.min("movement.wander_radius", &c.Movement.WanderRadius, 0)
	n.between("movement.wander_jitter", &c.Movement.WanderJitter, 0, math.Pi)
	n.min("movement.move_cost", &c.Movement.MoveCost, 0)
	n.min("movement.base_metabolism", &c.Movement.BaseMetabolism, 0)
	n.min("movement.age_metabolism", &c.Movement.AgeMetabolism, 0)

	// Spatial
	if !(c.Spatial.CellSize > 0) || math.IsInf(c.Spatial.CellSize, 0) {
		c.Derived.CellSize = c.Movement.BaseVision
	} else {
		c.Derived.CellSize = c.Spatial.CellSize
	}
	if floor := math.Max(c.World.Width, c.World.Height) / MaxGridDim; c.Derived.CellSize < floor {
		n.notef("spatial.cell_size: %v raised to %v to fit %d cells per axis", c.Derived.CellSize, floor, MaxGridDim)
		c.Derived.CellSize = floor
	}

	// Interaction
	n.min("interaction.radius", &c.Interaction.Radius, 0)
	n.min("interaction.collision_radius", &c.Interaction.CollisionRadius, 0)
	n.minInt("interaction.cooldown_ticks", &c.Interaction.CooldownTicks, 0)
	n.min("interaction.fight_surcharge", &c.Interaction.FightSurcharge, 0)
	n.min("interaction.knockback", &c.Interaction.Knockback, 0)
	n.betweenInt("interaction.memory_capacity", &c.Interaction.MemoryCapacity, 1, components.MemoryCapacity)

	// Payoff
	for _, e := range c.Payoff.entries() {
		n.finite("payoff."+e.name+"[0]", &e.delta[0])
		n.finite("payoff."+e.name+"[1]", &e.delta[1])
	}

	// Food
	n.min("food.energy", &c.Food.Energy, 0)

	// Reproduction
	n.between("reproduction.cost", &c.Reproduction.Cost, 0, c.Entity.MaxEnergy)
	n.between("reproduction.threshold", &c.Reproduction.Threshold, c.Reproduction.Cost, c.Entity.MaxEnergy)
	n.between("reproduction.child_energy_fraction", &c.Reproduction.ChildEnergyFraction, 0, 1)
	n.minInt("reproduction.cooldown_ticks", &c.Reproduction.CooldownTicks, 0)
	n.min("reproduction.spawn_offset", &c.Reproduction.SpawnOffset, 0)

	// Mutation
	n.between("mutation.trait_rate", &c.Mutation.TraitRate, 0, 1)
	n.min("mutation.trait_magnitude", &c.Mutation.TraitMagnitude, 0)
	n.between("mutation.strategy_rate", &c.Mutation.StrategyRate, 0, 1)

	// Population
	n.minInt("population.initial_agents", &c.Population.InitialAgents, 0)
	n.minInt("population.initial_food", &c.Population.InitialFood, 0)
	n.min("population.agent_density", &c.Population.AgentDensity, 0)
	n.min("population.food_density", &c.Population.FoodDensity, 0)
	n.betweenInt("population.max_agents", &c.Population.MaxAgents, 1, MaxEntities)
	n.betweenInt("population.min_agents", &c.Population.MinAgents, 0, c.Population.MaxAgents)

	c.Derived.InitialAgents = c.Population.InitialAgents
	if c.Derived.InitialAgents == 0 && c.Population.AgentDensity > 0 {
		c.Derived.InitialAgents = densityCount(c.Population.AgentDensity, c.WorldArea())
	}
	if c.Derived.InitialAgents > c.Population.MaxAgents {
		n.notef("initial agents %d capped at max_agents %d", c.Derived.InitialAgents, c.Population.MaxAgents)
		c.Derived.InitialAgents = c.Population.MaxAgents
	}
	c.Derived.InitialFood = c.Population.InitialFood
	if c.Derived.InitialFood == 0 && c.Population.FoodDensity > 0 {
		c.Derived.InitialFood = densityCount(c.Population.FoodDensity, c.WorldArea())
	}
	if c.Derived.InitialFood > MaxEntities {
		n.notef("initial food %d capped at %d", c.Derived.InitialFood, MaxEntities)
		c.Derived.InitialFood = MaxEntities
	}

	c.Derived.SpawnWeights = n.spawnWeights(c.Population.SpawnRatios)

	// Telemetry
	n.minInt("telemetry.window_ticks", &c.Telemetry.WindowTicks, 1)
	n.minInt("telemetry.perf_window", &c.Telemetry.PerfWindow, 1)

	c.Derived.Adjustments = n.notes
	return n.notes
}

// DefaultSpawnWeights is the distribution used when configured ratios sum to
// zero: every strategy equally likely.
func DefaultSpawnWeights() [components.NumStrategies]float64 {
	var w [components.NumStrategies]float64
	for i := range w {
		w[i] = 1.0 / float64(components.NumStrategies)
	}
	return w
}

// spawnWeights converts named ratios into a normalized per-strategy table.
// Unknown names and negative or non-finite weights are dropped.
func (n *normalizer) spawnWeights(ratios map[string]float64) [components.NumStrategies]float64 {
	var w [components.NumStrategies]float64

	// Sorted keys keep the adjustment log deterministic.
	names := make([]string, 0, len(ratios))
	for name := range ratios {
		names = append(names, name)
	}
	sort.Strings(names)

	var sum float64
	for _, name := range names {
		v := ratios[name]
		s, ok := components.ParseStrategy(name)
		if !ok {
			n.notef("population.spawn_ratios: unknown strategy %q ignored", name)
			continue
		}
		if !(v >= 0) || math.IsInf(v, 0) {
			n.notef("population.spawn_ratios.%s: %v clamped to 0", name, v)
			continue
		}
		w[s] = v
	}
	for _, v := range w {
		sum += v
	}
	if sum == 0 {
		if len(ratios) > 0 {
			n.notef("population.spawn_ratios: sum is 0, using uniform distribution")
		}
		return DefaultSpawnWeights()
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}

type payoffEntry struct {
	name  string
	delta *[2]float64
}

// entries returns pointers to every matrix entry in declaration order.
func (p *PayoffConfig) entries() []payoffEntry {
	return []payoffEntry{
		{"fight_fight", &p.FightFight},
		{"fight_share", &p.FightShare},
		{"fight_flee", &p.FightFlee},
		{"share_share", &p.ShareShare},
		{"share_flee", &p.ShareFlee},
		{"flee_flee", &p.FleeFlee},
	}
}
