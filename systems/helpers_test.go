package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/skirmish/components"
	"github.com/pthm-cable/skirmish/config"
	"github.com/pthm-cable/skirmish/traits"
)

// quietConfig returns defaults with every force and cost that could blur a
// focused test switched off.
func quietConfig() *config.Config {
	cfg := config.Default()
	cfg.Movement.BaseMetabolism = 0
	cfg.Movement.MoveCost = 0
	cfg.Movement.SeparationWeight = 0
	cfg.Interaction.Knockback = 0
	cfg.Normalize()
	return cfg
}

func newTestEnv(t *testing.T, cfg *config.Config) Env {
	t.Helper()
	w := ecs.NewWorld()
	return Env{
		Config:    cfg,
		Agents:    NewAgentPool(w),
		Food:      NewFoodPool(w),
		AgentGrid: NewSpatialGrid(cfg.World.Width, cfg.World.Height, cfg.Derived.CellSize),
		FoodGrid:  NewSpatialGrid(cfg.World.Width, cfg.World.Height, cfg.Derived.CellSize),
		RNG:       NewRNG(1),
	}
}

func addAgent(env Env, x, y float64, s components.Strategy, energy float64) ecs.Entity {
	e := env.Agents.Acquire(AgentSpawn{
		X:        x,
		Y:        y,
		Traits:   traits.Default(),
		Strategy: s,
		Energy:   energy,
	})
	env.AgentGrid.Insert(e, x, y)
	return e
}

func addFood(env Env, x, y, value float64) ecs.Entity {
	e := env.Food.Acquire(x, y, value)
	env.FoodGrid.Insert(e, x, y)
	return e
}

func r2vec(x, y float64) r2.Vec { return r2.Vec{X: x, Y: y} }
