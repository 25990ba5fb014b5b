package telemetry

import (
	"log/slog"

	"github.com/pthm-cable/skirmish/components"
)

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Live        int `csv:"live"`
	Aggressive  int `csv:"aggressive"`
	Passive     int `csv:"passive"`
	TitForTat   int `csv:"tit_for_tat"`
	Grudger     int `csv:"grudger"`
	Opportunist int `csv:"opportunist"`
	Random      int `csv:"random"`
	LiveFood    int `csv:"food"`

	// Events during window
	Births           int `csv:"births"`
	FloorSpawns      int `csv:"floor_spawns"`
	Deaths           int `csv:"deaths"`
	StarvationDeaths int `csv:"starvation_deaths"`
	CombatDeaths     int `csv:"combat_deaths"`
	AgeDeaths        int `csv:"age_deaths"`

	// Encounters during window
	Encounters int `csv:"encounters"`
	Fights     int `csv:"fights"`
	Shares     int `csv:"shares"`
	Flees      int `csv:"flees"`
	Ignores    int `csv:"ignores"`
	FoodEaten  int `csv:"food_eaten"`

	// Fights chosen per strategy during window
	AggressiveFights  int `csv:"aggressive_fights"`
	PassiveFights     int `csv:"passive_fights"`
	TitForTatFights   int `csv:"tit_for_tat_fights"`
	GrudgerFights     int `csv:"grudger_fights"`
	OpportunistFights int `csv:"opportunist_fights"`
	RandomFights      int `csv:"random_fights"`

	// Energy distribution (sampled at window end)
	EnergyMean float64 `csv:"energy_mean"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	Evenness float64 `csv:"evenness"`
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats(logger *slog.Logger) {
	logger.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"live", s.Live,
		"aggressive", s.Aggressive,
		"passive", s.Passive,
		"tit_for_tat", s.TitForTat,
		"grudger", s.Grudger,
		"opportunist", s.Opportunist,
		"random", s.Random,
		"food", s.LiveFood,
		"births", s.Births,
		"floor_spawns", s.FloorSpawns,
		"deaths", s.Deaths,
		"encounters", s.Encounters,
		"fights", s.Fights,
		"shares", s.Shares,
		"energy_mean", s.EnergyMean,
		"evenness", s.Evenness,
	)
}

// Collector accumulates per-tick Stats into windows.
type Collector struct {
	windowTicks int64
	dt          float64

	windowStartTick int64
	acc             WindowStats
	fights          [components.NumStrategies]int
}

// NewCollector creates a collector that flushes every windowTicks ticks.
// dt is the seconds per tick used for the sim-time column.
func NewCollector(windowTicks int, dt float64) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: int64(windowTicks), dt: dt}
}

// Record adds one tick's events to the current window.
func (c *Collector) Record(s Stats) {
	c.acc.Births += s.Births
	c.acc.FloorSpawns += s.FloorSpawns
	c.acc.Deaths += s.Deaths
	c.acc.StarvationDeaths += s.StarvationDeaths
	c.acc.CombatDeaths += s.CombatDeaths
	c.acc.AgeDeaths += s.AgeDeaths
	c.acc.Encounters += s.Encounters
	c.acc.Fights += s.Fights
	c.acc.Shares += s.Shares
	c.acc.Flees += s.Flees
	c.acc.Ignores += s.Ignores
	c.acc.FoodEaten += s.FoodEaten
	for i := range c.fights {
		c.fights[i] += s.Actions[i][components.ActionFight]
	}
}

// ShouldFlush reports whether the window ending at tick is complete.
func (c *Collector) ShouldFlush(tick int64) bool {
	return tick-c.windowStartTick >= c.windowTicks
}

// Pending reports whether ticks up to tick have been recorded since the
// last flush.
func (c *Collector) Pending(tick int64) bool {
	return tick > c.windowStartTick
}

// Flush produces the WindowStats for the window ending with last and
// starts a new window.
func (c *Collector) Flush(last Stats) WindowStats {
	out := c.acc
	out.WindowStartTick = c.windowStartTick
	out.WindowEndTick = last.Tick
	out.SimTimeSec = float64(last.Tick) * c.dt

	out.Live = last.Live
	out.Aggressive = last.ByStrategy[components.StrategyAggressive]
	out.Passive = last.ByStrategy[components.StrategyPassive]
	out.TitForTat = last.ByStrategy[components.StrategyTitForTat]
	out.Grudger = last.ByStrategy[components.StrategyGrudger]
	out.Opportunist = last.ByStrategy[components.StrategyOpportunist]
	out.Random = last.ByStrategy[components.StrategyRandom]
	out.LiveFood = last.LiveFood

	out.AggressiveFights = c.fights[components.StrategyAggressive]
	out.PassiveFights = c.fights[components.StrategyPassive]
	out.TitForTatFights = c.fights[components.StrategyTitForTat]
	out.GrudgerFights = c.fights[components.StrategyGrudger]
	out.OpportunistFights = c.fights[components.StrategyOpportunist]
	out.RandomFights = c.fights[components.StrategyRandom]

	out.EnergyMean, out.EnergyP10, out.EnergyP50, out.EnergyP90 = ComputeEnergyStats(last.Energies)
	out.Evenness = Evenness(last.ByStrategy)

	c.windowStartTick = last.Tick
	c.acc = WindowStats{}
	c.fights = [components.NumStrategies]int{}
	return out
}

// Reset discards the current window and restarts it at tick.
func (c *Collector) Reset(tick int64) {
	c.windowStartTick = tick
	c.acc = WindowStats{}
	c.fights = [components.NumStrategies]int{}
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int64 {
	return c.windowTicks
}
