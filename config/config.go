// Package config provides configuration loading and normalization for the
// simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/skirmish/components"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Boundary modes.
const (
	BoundaryBounce = "bounce"
	BoundaryWrap   = "wrap"
)

// Config holds all simulation configuration parameters.
// A Config is passed by pointer into every tick and must not be mutated while
// a tick runs; live edits go through game.SetConfig, which swaps at the next
// tick boundary.
type Config struct {
	Version      int                `yaml:"version" json:"version"`
	Seed         Seed               `yaml:"seed" json:"seed"`
	World        WorldConfig        `yaml:"world" json:"world"`
	Physics      PhysicsConfig      `yaml:"physics" json:"physics"`
	Spatial      SpatialConfig      `yaml:"spatial" json:"spatial"`
	Population   PopulationConfig   `yaml:"population" json:"population"`
	Entity       EntityConfig       `yaml:"entity" json:"entity"`
	Movement     MovementConfig     `yaml:"movement" json:"movement"`
	Interaction  InteractionConfig  `yaml:"interaction" json:"interaction"`
	Payoff       PayoffConfig       `yaml:"payoff" json:"payoff"`
	Food         FoodConfig         `yaml:"food" json:"food"`
	Reproduction ReproductionConfig `yaml:"reproduction" json:"reproduction"`
	Mutation     MutationConfig     `yaml:"mutation" json:"mutation"`
	Telemetry    TelemetryConfig    `yaml:"telemetry" json:"telemetry"`

	// Derived values computed by Normalize
	Derived DerivedConfig `yaml:"-" json:"-"`
}

// WorldConfig holds arena dimensions and edge handling.
// Width and height are supplied by the presentation layer.
type WorldConfig struct {
	Width      float64 `yaml:"width" json:"width"`
	Height     float64 `yaml:"height" json:"height"`
	Boundary   string  `yaml:"boundary" json:"boundary"`       // bounce | wrap
	EdgeMargin float64 `yaml:"edge_margin" json:"edge_margin"` // bounce steering starts this close to an edge
	EdgeForce  float64 `yaml:"edge_force" json:"edge_force"`   // magnitude of the bounce steering force
}

// PhysicsConfig holds integration parameters.
type PhysicsConfig struct {
	DT              float64 `yaml:"dt" json:"dt"`                                 // seconds per tick
	MaxStepsPerPoll int     `yaml:"max_steps_per_poll" json:"max_steps_per_poll"` // accumulator catch-up cap
	Friction        float64 `yaml:"friction" json:"friction"`                     // velocity damping per tick, 0..1
	MaxForce        float64 `yaml:"max_force" json:"max_force"`                   // steering force clamp (base, scaled by speed trait)
	BaseMaxSpeed    float64 `yaml:"base_max_speed" json:"base_max_speed"`         // units per second at speed trait 1
}

// SpatialConfig holds spatial index parameters.
type SpatialConfig struct {
	CellSize float64 `yaml:"cell_size" json:"cell_size"` // 0 = movement.base_vision
}

// PopulationConfig holds initial counts, caps and the strategy mix.
type PopulationConfig struct {
	InitialAgents int                `yaml:"initial_agents" json:"initial_agents"`
	InitialFood   int                `yaml:"initial_food" json:"initial_food"`
	AgentDensity  float64            `yaml:"agent_density" json:"agent_density"` // agents per 10k square units, used when initial_agents is 0
	FoodDensity   float64            `yaml:"food_density" json:"food_density"`   // food per 10k square units, used when initial_food is 0
	MaxAgents     int                `yaml:"max_agents" json:"max_agents"`
	MinAgents     int                `yaml:"min_agents" json:"min_agents"` // population floor
	SpawnRatios   map[string]float64 `yaml:"spawn_ratios" json:"spawn_ratios"`
}

// EntityConfig holds agent energy and lifespan limits.
type EntityConfig struct {
	MaxEnergy     float64 `yaml:"max_energy" json:"max_energy"`
	InitialEnergy float64 `yaml:"initial_energy" json:"initial_energy"`
	MaxAge        float64 `yaml:"max_age" json:"max_age"` // seconds; 0 disables old-age death
}

// MovementConfig holds steering and metabolic parameters.
type MovementConfig struct {
	BaseVision         float64 `yaml:"base_vision" json:"base_vision"`
	CrowdRadius        float64 `yaml:"crowd_radius" json:"crowd_radius"`
	SeparationWeight   float64 `yaml:"separation_weight" json:"separation_weight"`
	LowEnergyThreshold float64 `yaml:"low_energy_threshold" json:"low_energy_threshold"`
	ThreatAggression   float64 `yaml:"threat_aggression" json:"threat_aggression"` // neighbors at or above this aggression count as threats
	SlowRadius         float64 `yaml:"slow_radius" json:"slow_radius"`
	WanderDistance     float64 `yaml:"wander_distance" json:"wander_distance"`
	WanderRadius       float64 `yaml:"wander_radius" json:"wander_radius"`
	WanderJitter       float64 `yaml:"wander_jitter" json:"wander_jitter"` // radians per tick
	MoveCost           float64 `yaml:"move_cost" json:"move_cost"`         // energy per unit travelled
	BaseMetabolism     float64 `yaml:"base_metabolism" json:"base_metabolism"`
	AgeMetabolism      float64 `yaml:"age_metabolism" json:"age_metabolism"` // metabolic multiplier growth per second of age
}

// InteractionConfig holds encounter parameters.
type InteractionConfig struct {
	Radius          float64 `yaml:"radius" json:"radius"`
	CollisionRadius float64 `yaml:"collision_radius" json:"collision_radius"` // food consumption distance
	CooldownTicks   int     `yaml:"cooldown_ticks" json:"cooldown_ticks"`
	FightSurcharge  float64 `yaml:"fight_surcharge" json:"fight_surcharge"`
	Knockback       float64 `yaml:"knockback" json:"knockback"` // velocity impulse per fight
	MemoryCapacity  int     `yaml:"memory_capacity" json:"memory_capacity"`
}

// PayoffConfig holds the canonical (self, other) energy deltas for each
// unordered action pair.
type PayoffConfig struct {
	FightFight [2]float64 `yaml:"fight_fight" json:"fight_fight"`
	FightShare [2]float64 `yaml:"fight_share" json:"fight_share"`
	FightFlee  [2]float64 `yaml:"fight_flee" json:"fight_flee"`
	ShareShare [2]float64 `yaml:"share_share" json:"share_share"`
	ShareFlee  [2]float64 `yaml:"share_flee" json:"share_flee"`
	FleeFlee   [2]float64 `yaml:"flee_flee" json:"flee_flee"`
}

// FoodConfig holds food parameters.
type FoodConfig struct {
	Energy float64 `yaml:"energy" json:"energy"`
}

// ReproductionConfig holds reproduction parameters.
type ReproductionConfig struct {
	Threshold           float64 `yaml:"threshold" json:"threshold"`
	Cost                float64 `yaml:"cost" json:"cost"`
	ChildEnergyFraction float64 `yaml:"child_energy_fraction" json:"child_energy_fraction"`
	CooldownTicks       int     `yaml:"cooldown_ticks" json:"cooldown_ticks"`
	SpawnOffset         float64 `yaml:"spawn_offset" json:"spawn_offset"`
}

// MutationConfig holds mutation parameters.
type MutationConfig struct {
	TraitRate      float64 `yaml:"trait_rate" json:"trait_rate"`
	TraitMagnitude float64 `yaml:"trait_magnitude" json:"trait_magnitude"`
	StrategyRate   float64 `yaml:"strategy_rate" json:"strategy_rate"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	WindowTicks int `yaml:"window_ticks" json:"window_ticks"`
	PerfWindow  int `yaml:"perf_window" json:"perf_window"`
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	SpawnWeights  [components.NumStrategies]float64 // normalized, sums to 1
	CellSize      float64
	InitialAgents int
	InitialFood   int
	Adjustments   []string // clamps applied by the last Normalize
}

// Default returns a normalized copy of the embedded defaults.
func Default() *Config {
	cfg, err := parse(defaultsYAML)
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	cfg.Normalize()
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := parse(defaultsYAML)
	if err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.Normalize()
	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.Population.SpawnRatios != nil {
		out.Population.SpawnRatios = make(map[string]float64, len(c.Population.SpawnRatios))
		for k, v := range c.Population.SpawnRatios {
			out.Population.SpawnRatios[k] = v
		}
	}
	out.Derived.Adjustments = append([]string(nil), c.Derived.Adjustments...)
	return &out
}

// WorldArea returns the arena area in square units.
func (c *Config) WorldArea() float64 {
	return c.World.Width * c.World.Height
}

// Wrap reports whether the arena is toroidal.
func (c *Config) Wrap() bool {
	return c.World.Boundary == BoundaryWrap
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// densityCount converts a per-10k-square-unit density into a count.
// Counts beyond MaxEntities saturate so huge arenas cannot overflow int.
func densityCount(density, area float64) int {
	n := math.Round(density * area / 10000)
	if !(n >= 0) {
		return 0
	}
	if n > MaxEntities+1 {
		return MaxEntities + 1
	}
	return int(n)
}
