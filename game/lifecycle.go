package game

import (
	"github.com/pthm-cable/skirmish/config"
	"github.com/pthm-cable/skirmish/systems"
)

// Reset reinitializes the RNG, pools and spatial indices from cfg and
// respawns the initial population. A nil cfg resets with the current
// configuration. Pending swaps are discarded.
func (g *Game) Reset(cfg *config.Config) {
	if cfg == nil {
		cfg = g.cfg
	}
	next := cfg.Clone()
	if adj := next.Normalize(); len(adj) > 0 {
		g.logger.Info("config adjusted", "adjustments", adj)
	}
	g.cfg = next
	g.pending, g.resize = nil, nil

	g.rng.Reseed(int64(next.Seed))
	g.agents.Reset()
	g.food.Reset()

	w, h, cell := next.World.Width, next.World.Height, next.Derived.CellSize
	if g.agentGrid == nil {
		g.agentGrid = systems.NewSpatialGrid(w, h, cell)
		g.foodGrid = systems.NewSpatialGrid(w, h, cell)
	} else {
		g.agentGrid.Clear()
		g.foodGrid.Clear()
		g.agentGrid.Resize(w, h, cell)
		g.foodGrid.Resize(w, h, cell)
	}

	g.tick = 0
	g.clock = NewClock(next.Physics.DT, next.Physics.MaxStepsPerPoll)
	g.spawnInitialPopulation()
	g.baselineStats()
	if g.collector != nil {
		g.collector.Reset(0)
	}

	g.logger.Info("simulation reset",
		"seed", int64(next.Seed),
		"agents", g.agents.Live(),
		"food", g.food.Live(),
		"width", w,
		"height", h,
		"boundary", next.World.Boundary,
	)
}

// spawnInitialPopulation creates the starting agents, then the starting
// food, drawing every position from the seeded RNG.
func (g *Game) spawnInitialPopulation() {
	cfg := g.cfg
	for i := 0; i < cfg.Derived.InitialAgents; i++ {
		g.spawnAgent(systems.RandomSpawn(cfg, g.rng))
	}
	for i := 0; i < cfg.Derived.InitialFood; i++ {
		x := g.rng.Range(0, cfg.World.Width)
		y := g.rng.Range(0, cfg.World.Height)
		g.acquireFood(x, y, cfg.Food.Energy)
	}
}

// spawnAgent acquires an agent from the pool and indexes it.
// Must not be called while a query over the world is open.
func (g *Game) spawnAgent(s systems.AgentSpawn) {
	e := g.agents.Acquire(s)
	g.agentGrid.Insert(e, s.X, s.Y)
}

// applyPending swaps in a scheduled configuration or resize. It runs only
// at the start of a tick.
func (g *Game) applyPending() {
	if g.pending == nil && g.resize == nil {
		return
	}
	prev := g.cfg
	next := g.pending
	if next == nil {
		next = prev.Clone()
	}
	if g.resize != nil {
		next.World.Width = g.resize.width
		next.World.Height = g.resize.height
		if adj := next.Normalize(); len(adj) > 0 {
			g.logger.Info("config adjusted", "adjustments", adj)
		}
	}
	g.pending, g.resize = nil, nil

	next.Version = prev.Version + 1
	g.cfg = next
	g.clock.Configure(next.Physics.DT, next.Physics.MaxStepsPerPoll)

	if next.World.Width != prev.World.Width ||
		next.World.Height != prev.World.Height ||
		next.World.Boundary != prev.World.Boundary ||
		next.Derived.CellSize != prev.Derived.CellSize {
		g.refit()
	}

	g.logger.Info("config applied",
		"tick", g.tick,
		"version", next.Version,
		"width", next.World.Width,
		"height", next.World.Height,
	)
}

// refit rebuilds both indices for the current arena and moves every entity
// back inside it.
func (g *Game) refit() {
	cfg := g.cfg
	w, h, cell := cfg.World.Width, cfg.World.Height, cfg.Derived.CellSize
	g.agentGrid.Resize(w, h, cell)
	g.foodGrid.Resize(w, h, cell)

	query := g.agents.Filter().Query()
	for query.Next() {
		pos, _, _, _, _, _, _ := query.Get()
		pos.X, pos.Y = systems.Place(cfg, pos.X, pos.Y)
		g.agentGrid.Update(query.Entity(), pos.X, pos.Y)
	}
	foodQuery := g.food.Filter().Query()
	for foodQuery.Next() {
		pos, _ := foodQuery.Get()
		pos.X, pos.Y = systems.Place(cfg, pos.X, pos.Y)
		g.foodGrid.Update(foodQuery.Entity(), pos.X, pos.Y)
	}
}
