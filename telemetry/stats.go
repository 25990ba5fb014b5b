// Package telemetry provides per-tick statistics, windowed aggregation,
// CSV output, performance timing and a compressed frame recorder.
package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/skirmish/components"
)

// Stats is the read-only aggregate the world exposes after each tick.
// Per-tick counters cover only the tick that produced the value; Total
// counters cover the run since the last reset.
type Stats struct {
	Tick       int64
	Live       int
	ByStrategy [components.NumStrategies]int
	AvgEnergy  float64
	LiveFood   int

	Births           int // voluntary reproduction
	FloorSpawns      int // population-floor enforcement
	Deaths           int
	StarvationDeaths int
	CombatDeaths     int
	AgeDeaths        int

	TotalBirths      int64
	TotalFloorSpawns int64
	TotalDeaths      int64

	Encounters int
	Fights     int
	Shares     int
	Flees      int
	Ignores    int
	FoodEaten  int

	// Actions tallies actions chosen this tick by the chooser's strategy.
	Actions [components.NumStrategies][components.NumActions]int

	// Energies holds the live agents' energies in query order. The slice is
	// owned by the world and overwritten on the next tick.
	Energies []float64 `json:"-"`
}

// Count returns the live count for s.
func (s Stats) Count(st components.Strategy) int {
	if !st.Valid() {
		return 0
	}
	return s.ByStrategy[st]
}

// LogValue implements slog.LogValuer for structured logging.
func (s Stats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("tick", s.Tick),
		slog.Int("live", s.Live),
		slog.Int("food", s.LiveFood),
		slog.Float64("avg_energy", s.AvgEnergy),
		slog.Int64("total_births", s.TotalBirths),
		slog.Int64("total_floor_spawns", s.TotalFloorSpawns),
		slog.Int64("total_deaths", s.TotalDeaths),
	}
	for i, n := range s.ByStrategy {
		attrs = append(attrs, slog.Int(components.Strategy(i).String(), n))
	}
	return slog.GroupValue(attrs...)
}

// Quantile returns the empirical p-quantile of sorted data, or 0 for no
// data. p is clamped to [0, 1].
func Quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	p = math.Max(0, math.Min(1, p))
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeEnergyStats returns the mean and 10th/50th/90th percentiles.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = Quantile(sorted, 0.10)
	p50 = Quantile(sorted, 0.50)
	p90 = Quantile(sorted, 0.90)
	return mean, p10, p50, p90
}

// Evenness returns the Shannon evenness of a strategy mix: 1 when every
// strategy is equally common, 0 when one strategy holds everything or the
// population is empty.
func Evenness(counts [components.NumStrategies]int) float64 {
	var total int
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return 0
	}
	p := make([]float64, len(counts))
	for i, n := range counts {
		p[i] = float64(n) / float64(total)
	}
	return stat.Entropy(p) / math.Log(float64(len(counts)))
}
