// Package game orchestrates the simulation: it owns the ECS world, entity
// pools and spatial indices, runs the systems in a fixed order each tick and
// exposes read-only statistics and frame snapshots.
package game

import (
	"log/slog"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/skirmish/config"
	"github.com/pthm-cable/skirmish/systems"
	"github.com/pthm-cable/skirmish/telemetry"
)

// Options holds optional collaborators for a game.
// Every field may be left zero.
type Options struct {
	Logger *slog.Logger

	// Telemetry sinks. A nil Collector disables windowed stats.
	Collector *telemetry.Collector
	Output    *telemetry.OutputManager
	Perf      *telemetry.PerfCollector
	LogStats  bool

	// Recorder receives a Frame every RecordEvery ticks (default 1).
	Recorder    *telemetry.Recorder
	RecordEvery int

	// OnWindow is called with each flushed telemetry window.
	OnWindow func(telemetry.WindowStats)
}

type resizeRequest struct {
	width, height float64
}

// Game holds the complete simulation state.
type Game struct {
	cfg     *config.Config
	pending *config.Config
	resize  *resizeRequest

	world     *ecs.World
	agents    *systems.AgentPool
	food      *systems.FoodPool
	agentGrid *systems.SpatialGrid
	foodGrid  *systems.SpatialGrid
	rng       *systems.RNG

	movement    *systems.MovementSystem
	interaction *systems.InteractionSystem
	evolution   *systems.EvolutionSystem

	clock  Clock
	tick   int64
	paused bool

	stats    telemetry.Stats
	energies []float64
	dead     []ecs.Entity
	frame    Frame

	logger      *slog.Logger
	collector   *telemetry.Collector
	output      *telemetry.OutputManager
	perf        *telemetry.PerfCollector
	logStats    bool
	recorder    *telemetry.Recorder
	recordEvery int64
	onWindow    func(telemetry.WindowStats)
}

// New creates a game from cfg and spawns the initial population.
// cfg is cloned and normalized; the caller keeps ownership of its value.
func New(cfg *config.Config, opts Options) *Game {
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	every := opts.RecordEvery
	if every < 1 {
		every = 1
	}

	world := ecs.NewWorld()
	g := &Game{
		world:       world,
		agents:      systems.NewAgentPool(world),
		food:        systems.NewFoodPool(world),
		rng:         systems.NewRNG(0),
		movement:    systems.NewMovementSystem(),
		interaction: systems.NewInteractionSystem(),
		evolution:   systems.NewEvolutionSystem(),
		logger:      logger,
		collector:   opts.Collector,
		output:      opts.Output,
		perf:        opts.Perf,
		logStats:    opts.LogStats,
		recorder:    opts.Recorder,
		recordEvery: int64(every),
		onWindow:    opts.OnWindow,
	}
	g.Reset(cfg)
	return g
}

// Config returns the configuration in effect for the current tick.
// The value must not be modified; use SetConfig.
func (g *Game) Config() *config.Config { return g.cfg }

// Tick returns the number of ticks run since the last reset.
func (g *Game) Tick() int64 { return g.tick }

// Stats returns the aggregate produced by the last tick.
func (g *Game) Stats() telemetry.Stats { return g.stats }

// Paused reports whether tick advancement is halted.
func (g *Game) Paused() bool { return g.paused }

// Pause halts tick advancement.
func (g *Game) Pause() { g.paused = true }

// Resume restarts tick advancement. Time that passed while paused is not
// caught up.
func (g *Game) Resume() {
	g.paused = false
	g.clock.Reset()
}

// Update advances the fixed-timestep clock by elapsed wall time and runs the
// steps it releases. It returns the number of ticks run.
func (g *Game) Update(elapsed time.Duration) int {
	if g.paused {
		return 0
	}
	n := g.clock.Advance(elapsed.Seconds())
	for i := 0; i < n; i++ {
		g.step()
	}
	return n
}

// Step runs exactly one tick regardless of the pause state, which is left
// as it was.
func (g *Game) Step() {
	paused := g.paused
	g.paused = false
	g.step()
	g.paused = paused
}

// Run executes n ticks back to back, ignoring the clock and pause state.
func (g *Game) Run(n int) {
	for i := 0; i < n; i++ {
		g.step()
	}
}

// SetConfig schedules cfg to replace the current configuration at the next
// tick boundary. The caller keeps ownership of cfg.
func (g *Game) SetConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	next := cfg.Clone()
	if adj := next.Normalize(); len(adj) > 0 {
		g.logger.Info("config adjusted", "adjustments", adj)
	}
	g.pending = next
}

// Resize schedules new arena dimensions for the next tick boundary.
func (g *Game) Resize(width, height float64) {
	g.resize = &resizeRequest{width: width, height: height}
}

// AcquireFood inserts a food item at (x, y), clamped or wrapped into the
// arena, worth the configured food energy. It is the hook the food
// replenishment policy calls between ticks.
func (g *Game) AcquireFood(x, y float64) ecs.Entity {
	return g.acquireFood(x, y, g.cfg.Food.Energy)
}

// AcquireFoodValue is AcquireFood with an explicit energy value. Negative
// values clamp to 0.
func (g *Game) AcquireFoodValue(x, y, value float64) ecs.Entity {
	if !(value > 0) {
		value = 0
	}
	return g.acquireFood(x, y, value)
}

func (g *Game) acquireFood(x, y, value float64) ecs.Entity {
	x, y = systems.Place(g.cfg, x, y)
	e := g.food.Acquire(x, y, value)
	g.foodGrid.Insert(e, x, y)
	return e
}

// FoodCount returns the number of live food items.
func (g *Game) FoodCount() int { return g.food.Live() }

// AgentCount returns the number of agents in the world.
func (g *Game) AgentCount() int { return g.agents.Live() }

// Close flushes a partial telemetry window. It does not close the sinks
// passed in Options.
func (g *Game) Close() {
	if g.collector != nil && g.collector.Pending(g.tick) {
		g.flushTelemetry()
	}
}
