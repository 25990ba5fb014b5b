// Command skirmish runs the encounter simulation headless or against the
// wall clock, optionally writing telemetry and serving frames to observers.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/skirmish/config"
	"github.com/pthm-cable/skirmish/game"
	"github.com/pthm-cable/skirmish/observer"
	"github.com/pthm-cable/skirmish/replenish"
	"github.com/pthm-cable/skirmish/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.String("seed", "", "RNG seed, number or string (empty = config seed)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config and record")
	recordPath := flag.String("record", "", "Write zstd-compressed JSONL frames to this file")
	recordEvery := flag.Int("record-every", 10, "Ticks between recorded frames")
	serveAddr := flag.String("serve", "", "Serve the observer websocket feed on this address")
	exportRecord := flag.String("export-record", "", "Write the configuration record to this file and continue")
	importRecord := flag.String("import-record", "", "Start from a configuration record")
	realtime := flag.Bool("realtime", false, "Advance with the wall clock instead of as fast as possible")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	foodTarget := flag.Int("food-target", -1, "Food count the replenisher maintains (-1 = initial food, 0 = off)")
	foodInterval := flag.Int("food-interval", 30, "Ticks between replenishment rounds")
	foodBatch := flag.Int("food-batch", 4, "Maximum food items added per round")
	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger, runOptions{
		configPath:   *configPath,
		seed:         *seed,
		maxTicks:     int64(*maxTicks),
		outputDir:    *outputDir,
		recordPath:   *recordPath,
		recordEvery:  *recordEvery,
		serveAddr:    *serveAddr,
		exportRecord: *exportRecord,
		importRecord: *importRecord,
		realtime:     *realtime,
		logStats:     *logStats,
		foodTarget:   *foodTarget,
		foodInterval: int64(*foodInterval),
		foodBatch:    *foodBatch,
	}); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

type runOptions struct {
	configPath   string
	seed         string
	maxTicks     int64
	outputDir    string
	recordPath   string
	recordEvery  int
	serveAddr    string
	exportRecord string
	importRecord string
	realtime     bool
	logStats     bool
	foodTarget   int
	foodInterval int64
	foodBatch    int
}

func run(logger *slog.Logger, o runOptions) (err error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.importRecord != "" {
		if cfg, err = config.ImportRecord(cfg, o.importRecord); err != nil {
			return err
		}
	}
	if o.seed != "" {
		cfg.Seed = config.ParseSeed(o.seed)
	}
	if adj := cfg.Normalize(); len(adj) > 0 {
		logger.Info("config adjusted", "adjustments", adj)
	}
	if o.exportRecord != "" {
		if err := config.ExportRecord(cfg, o.exportRecord); err != nil {
			return err
		}
		logger.Info("record exported", "path", o.exportRecord)
	}

	out, err := telemetry.NewOutputManager(o.outputDir)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, out.Close()) }()
	if err := out.WriteConfig(cfg); err != nil {
		return err
	}
	if err := out.WriteRecord(cfg); err != nil {
		return err
	}

	rec, err := telemetry.NewRecorder(o.recordPath)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, rec.Close()) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var hub *observer.Hub
	served := make(chan error, 1)
	if o.serveAddr != "" {
		hub = observer.NewHub(logger)
		go func() { served <- observer.ListenAndServe(ctx, o.serveAddr, hub) }()
	} else {
		close(served)
	}

	g := game.New(cfg, game.Options{
		Logger:      logger,
		Collector:   telemetry.NewCollector(cfg.Telemetry.WindowTicks, cfg.Physics.DT),
		Output:      out,
		Perf:        telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		LogStats:    o.logStats,
		Recorder:    rec,
		RecordEvery: o.recordEvery,
	})
	defer g.Close()

	target := o.foodTarget
	if target < 0 {
		target = g.Config().Derived.InitialFood
	}
	food := replenish.New(int64(g.Config().Seed)+1, target, o.foodInterval, o.foodBatch)

	slog.Info("starting simulation",
		"seed", int64(g.Config().Seed),
		"max_ticks", o.maxTicks,
		"realtime", o.realtime,
		"agents", g.AgentCount(),
		"food", g.FoodCount(),
	)

	loop := &runner{g: g, food: food, hub: hub, maxTicks: o.maxTicks, logger: logger}
	if o.realtime {
		loop.realtime(ctx)
	} else {
		loop.headless(ctx)
	}
	stop()

	if serr := <-served; serr != nil {
		return serr
	}
	s := g.Stats()
	slog.Info("simulation finished",
		"tick", g.Tick(),
		"live", s.Live,
		"births", s.TotalBirths,
		"deaths", s.TotalDeaths,
		"floor_spawns", s.TotalFloorSpawns,
	)
	return nil
}

// runner drives a game until the tick limit or cancellation.
type runner struct {
	g        *game.Game
	food     *replenish.Policy
	hub      *observer.Hub
	maxTicks int64
	logger   *slog.Logger
	frame    game.Frame
}

func (r *runner) done() bool {
	if r.maxTicks > 0 && r.g.Tick() >= r.maxTicks {
		r.logger.Info("max ticks reached", "tick", r.g.Tick())
		return true
	}
	return false
}

func (r *runner) publish() {
	if r.hub == nil {
		return
	}
	if err := r.hub.Publish(r.g.Frame(&r.frame)); err != nil {
		r.logger.Warn("publish failed", "error", err)
	}
}

func (r *runner) headless(ctx context.Context) {
	for !r.done() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		r.food.Tick(r.g, r.g.Tick())
		r.g.Step()
		r.publish()
	}
}

func (r *runner) realtime(ctx context.Context) {
	dt := time.Duration(r.g.Config().Physics.DT * float64(time.Second))
	if dt < time.Millisecond {
		dt = time.Millisecond
	}
	ticker := time.NewTicker(dt)
	defer ticker.Stop()

	last := time.Now()
	for !r.done() {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.food.Tick(r.g, r.g.Tick())
			if r.g.Update(now.Sub(last)) > 0 {
				r.publish()
			}
			last = now
		}
	}
}
