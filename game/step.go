package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/skirmish/systems"
	"github.com/pthm-cable/skirmish/telemetry"
)

// env bundles the state handed to every system for the current tick.
func (g *Game) env() systems.Env {
	return systems.Env{
		Config:    g.cfg,
		Tick:      g.tick,
		Agents:    g.agents,
		Food:      g.food,
		AgentGrid: g.agentGrid,
		FoodGrid:  g.foodGrid,
		RNG:       g.rng,
	}
}

// step runs a single tick of the simulation.
func (g *Game) step() {
	g.perf.StartTick()

	// 1. Swap in pending configuration and dimensions
	g.perf.StartPhase(telemetry.PhaseApply)
	g.applyPending()
	env := g.env()

	// 2. Steering, kinematics and metabolism
	g.perf.StartPhase(telemetry.PhaseMovement)
	mv := g.movement.Update(env)

	// 3. Food consumption and encounters
	g.perf.StartPhase(telemetry.PhaseInteraction)
	ir := g.interaction.Update(env)

	// 4. Deaths and reproduction
	g.perf.StartPhase(telemetry.PhaseEvolution)
	er := g.evolution.Update(env)

	// 5. Release the dead, acquire children, enforce the floor
	g.perf.StartPhase(telemetry.PhaseCleanup)
	floor := g.cleanup(ir.Eaten, er.Births)

	// 6. Aggregate
	g.perf.StartPhase(telemetry.PhaseStats)
	g.tick++
	g.collectStats(mv, ir, er, floor)

	g.perf.EndTick()
	g.afterTick()
}

// cleanup applies the structural changes the phases queued. It returns the
// number of floor spawns.
func (g *Game) cleanup(eaten []ecs.Entity, births []systems.Reproduction) int {
	g.dead = g.dead[:0]
	query := g.agents.Filter().Query()
	for query.Next() {
		_, _, _, _, energy, _, _ := query.Get()
		if !energy.Alive {
			g.dead = append(g.dead, query.Entity())
		}
	}
	for _, e := range g.dead {
		g.agentGrid.Remove(e)
		g.agents.Release(e)
	}

	for _, e := range eaten {
		g.foodGrid.Remove(e)
		g.food.Release(e)
	}

	for i := range births {
		g.spawnAgent(births[i].Child)
	}

	spawns := systems.EnforceFloor(g.cfg, g.agents.Live(), g.rng)
	for _, s := range spawns {
		g.spawnAgent(s)
	}
	if len(spawns) > 0 {
		g.logger.Debug("population floor enforced",
			"tick", g.tick,
			"spawned", len(spawns),
			"min_agents", g.cfg.Population.MinAgents,
		)
	}
	return len(spawns)
}

// collectStats computes the read-only aggregate for the tick just run.
func (g *Game) collectStats(mv systems.MovementResult, ir systems.InteractionResult, er systems.EvolutionResult, floor int) {
	prev := g.stats
	s := telemetry.Stats{
		Tick:             g.tick,
		LiveFood:         g.food.Live(),
		Births:           len(er.Births),
		FloorSpawns:      floor,
		StarvationDeaths: mv.Starved + er.EnergyDeaths,
		CombatDeaths:     ir.Deaths,
		AgeDeaths:        er.AgeDeaths,
		Encounters:       ir.Encounters,
		Fights:           ir.Fights,
		Shares:           ir.Shares,
		Flees:            ir.Flees,
		Ignores:          ir.Ignores,
		FoodEaten:        ir.FoodEaten,
		Actions:          ir.Actions,
	}
	s.Deaths = s.StarvationDeaths + s.CombatDeaths + s.AgeDeaths
	s.TotalBirths = prev.TotalBirths + int64(s.Births)
	s.TotalFloorSpawns = prev.TotalFloorSpawns + int64(s.FloorSpawns)
	s.TotalDeaths = prev.TotalDeaths + int64(s.Deaths)

	g.energies = g.energies[:0]
	var sum float64
	query := g.agents.Filter().Query()
	for query.Next() {
		_, _, _, _, energy, agent, _ := query.Get()
		if !energy.Alive {
			continue
		}
		s.Live++
		if agent.Strategy.Valid() {
			s.ByStrategy[agent.Strategy]++
		}
		sum += energy.Value
		g.energies = append(g.energies, energy.Value)
	}
	if s.Live > 0 {
		s.AvgEnergy = sum / float64(s.Live)
	}
	s.Energies = g.energies
	g.stats = s
}

// baselineStats fills the stats for tick 0 from the freshly spawned world.
func (g *Game) baselineStats() {
	g.stats = telemetry.Stats{}
	g.collectStats(systems.MovementResult{}, systems.InteractionResult{}, systems.EvolutionResult{}, 0)
}
