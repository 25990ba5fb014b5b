package main

import (
	"io"
	"log/slog"
	"sync"

	"github.com/pthm-cable/skirmish/config"
	"github.com/pthm-cable/skirmish/game"
	"github.com/pthm-cable/skirmish/replenish"
	"github.com/pthm-cable/skirmish/telemetry"
)

// Food policy used by every evaluation run.
const (
	foodInterval = 30
	foodBatch    = 4
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	ticks      int
	seeds      []int64
	baseConfig *config.Config
	logger     *slog.Logger

	mu           sync.Mutex
	lastEvenness float64
	lastLive     float64
}

// NewFitnessEvaluator creates a new evaluator. baseCfg is cloned for every
// run and never modified.
func NewFitnessEvaluator(params *ParamVector, ticks int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		ticks:      ticks,
		seeds:      seeds,
		baseConfig: baseCfg,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// LastEvenness returns the mean evenness from the most recent evaluation.
func (fe *FitnessEvaluator) LastEvenness() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastEvenness
}

// LastLive returns the mean final population from the most recent evaluation.
func (fe *FitnessEvaluator) LastLive() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastLive
}

// runResult holds the results from a single simulation run.
type runResult struct {
	evenness float64
	live     int
}

// Evaluate computes fitness for raw parameter values (lower = better).
// Fitness is one minus the mean strategy evenness across seeds, so a run in
// which every strategy persists in equal numbers scores 0.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	// Run all seeds in parallel
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var evenness, live float64
	for _, r := range results {
		evenness += r.evenness
		live += float64(r.live)
	}
	n := float64(len(fe.seeds))
	evenness /= n
	fitness := 1 - evenness

	fe.mu.Lock()
	fe.lastEvenness = evenness
	fe.lastLive = live / n
	fe.mu.Unlock()

	return fitness
}

// runSimulation executes a single headless run. Evenness is averaged over
// the telemetry windows that close in the second half of the run, after the
// founders' mix has had time to wash out; a run too short to close any such
// window uses its final strategy mix.
func (fe *FitnessEvaluator) runSimulation(base *config.Config, seed int64) runResult {
	cfg := base.Clone()
	cfg.Seed = config.Seed(seed)

	half := int64(fe.ticks / 2)
	var sum float64
	var windows int
	g := game.New(cfg, game.Options{
		Logger:    fe.logger,
		Collector: telemetry.NewCollector(cfg.Telemetry.WindowTicks, cfg.Physics.DT),
		OnWindow: func(w telemetry.WindowStats) {
			if w.WindowEndTick > half {
				sum += w.Evenness
				windows++
			}
		},
	})
	food := replenish.New(seed+1, g.Config().Derived.InitialFood, foodInterval, foodBatch)

	for g.Tick() < int64(fe.ticks) {
		food.Tick(g, g.Tick())
		g.Step()
	}

	s := g.Stats()
	res := runResult{live: s.Live}
	if windows > 0 {
		res.evenness = sum / float64(windows)
	} else {
		res.evenness = telemetry.Evenness(s.ByStrategy)
	}
	return res
}
