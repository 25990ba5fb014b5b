package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// RecordVersion is the newest record layout this build understands.
const RecordVersion = 1

//go:embed record.schema.json
var recordSchemaJSON string

var recordSchema = jsonschema.MustCompileString("record.schema.json", recordSchemaJSON)

// Record is the exportable subset of a configuration: everything that shapes
// a run from its seed onward. Importing a record onto any base config and
// resetting reproduces the exported run's initial spawn.
type Record struct {
	Version        int                `json:"version"`
	Seed           Seed               `json:"seed"`
	InitialAgents  int                `json:"initial_agents"`
	InitialFood    int                `json:"initial_food"`
	StrategyRatios map[string]float64 `json:"strategy_ratios"`
	Rules          Rules              `json:"rules"`
}

// Rules are the rule parameters carried by a Record.
type Rules struct {
	World        WorldConfig        `json:"world"`
	Physics      PhysicsConfig      `json:"physics"`
	Population   RecordPopulation   `json:"population"`
	Entity       EntityConfig       `json:"entity"`
	Movement     MovementConfig     `json:"movement"`
	Interaction  InteractionConfig  `json:"interaction"`
	Payoff       PayoffConfig       `json:"payoff"`
	Food         FoodConfig         `json:"food"`
	Reproduction ReproductionConfig `json:"reproduction"`
	Mutation     MutationConfig     `json:"mutation"`
}

// RecordPopulation holds the population limits carried by a Record.
type RecordPopulation struct {
	MinAgents int `json:"min_agents"`
	MaxAgents int `json:"max_agents"`
}

// NewRecord captures cfg. Counts are the resolved initial counts, so a
// density-driven config exports the numbers it actually spawned.
func NewRecord(cfg *Config) Record {
	ratios := make(map[string]float64, len(cfg.Population.SpawnRatios))
	for k, v := range cfg.Population.SpawnRatios {
		ratios[k] = v
	}
	return Record{
		Version:        RecordVersion,
		Seed:           cfg.Seed,
		InitialAgents:  cfg.Derived.InitialAgents,
		InitialFood:    cfg.Derived.InitialFood,
		StrategyRatios: ratios,
		Rules: Rules{
			World:        cfg.World,
			Physics:      cfg.Physics,
			Population:   RecordPopulation{MinAgents: cfg.Population.MinAgents, MaxAgents: cfg.Population.MaxAgents},
			Entity:       cfg.Entity,
			Movement:     cfg.Movement,
			Interaction:  cfg.Interaction,
			Payoff:       cfg.Payoff,
			Food:         cfg.Food,
			Reproduction: cfg.Reproduction,
			Mutation:     cfg.Mutation,
		},
	}
}

// Apply returns a normalized copy of base with the record's values laid
// over it.
func (r Record) Apply(base *Config) *Config {
	cfg := base.Clone()
	cfg.Seed = r.Seed
	cfg.Population.InitialAgents = r.InitialAgents
	cfg.Population.InitialFood = r.InitialFood
	cfg.Population.AgentDensity = 0
	cfg.Population.FoodDensity = 0
	cfg.Population.SpawnRatios = make(map[string]float64, len(r.StrategyRatios))
	for k, v := range r.StrategyRatios {
		cfg.Population.SpawnRatios[k] = v
	}
	cfg.Population.MinAgents = r.Rules.Population.MinAgents
	cfg.Population.MaxAgents = r.Rules.Population.MaxAgents

	cfg.World = r.Rules.World
	cfg.Physics = r.Rules.Physics
	cfg.Entity = r.Rules.Entity
	cfg.Movement = r.Rules.Movement
	cfg.Interaction = r.Rules.Interaction
	cfg.Payoff = r.Rules.Payoff
	cfg.Food = r.Rules.Food
	cfg.Reproduction = r.Rules.Reproduction
	cfg.Mutation = r.Rules.Mutation
	cfg.Normalize()
	return cfg
}

// MarshalRecord encodes a record as indented JSON.
func MarshalRecord(r Record) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	return data, nil
}

// ParseRecord validates data against the record schema and decodes it.
// Records newer than RecordVersion are rejected; value ranges are left to
// Normalize when the record is applied.
func ParseRecord(data []byte) (Record, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Record{}, fmt.Errorf("decoding record: %w", err)
	}
	if err := recordSchema.Validate(doc); err != nil {
		return Record{}, fmt.Errorf("validating record: %w", err)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("decoding record: %w", err)
	}
	if r.Version > RecordVersion {
		return Record{}, fmt.Errorf("record version %d is newer than supported version %d", r.Version, RecordVersion)
	}
	return r, nil
}

// ExportRecord writes cfg's record to path.
func ExportRecord(cfg *Config, path string) error {
	data, err := MarshalRecord(NewRecord(cfg))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	return nil
}

// ImportRecord reads the record at path and applies it to base.
func ImportRecord(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading record: %w", err)
	}
	r, err := ParseRecord(data)
	if err != nil {
		return nil, err
	}
	return r.Apply(base), nil
}
