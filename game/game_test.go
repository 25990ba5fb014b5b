package game

import (
	"io"
	"log/slog"
	"math/rand"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/pthm-cable/skirmish/components"
	"github.com/pthm-cable/skirmish/config"
	"github.com/pthm-cable/skirmish/telemetry"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGame(cfg *config.Config) *Game {
	return New(cfg, Options{Logger: quietLogger()})
}

func TestDeterministicTrajectories(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 1234

	a := newTestGame(cfg)
	b := newTestGame(cfg)
	for tick := 1; tick <= 400; tick++ {
		a.Step()
		b.Step()
		if tick%25 != 0 {
			continue
		}
		fa, fb := a.Frame(nil), b.Frame(nil)
		if !reflect.DeepEqual(fa.Agents, fb.Agents) {
			t.Fatalf("tick %d: agent trajectories diverged", tick)
		}
		if !reflect.DeepEqual(fa.Food, fb.Food) {
			t.Fatalf("tick %d: food diverged", tick)
		}
	}
	if !reflect.DeepEqual(a.Stats(), b.Stats()) {
		t.Error("final stats differ")
	}
}

func TestAggressiveFloorScenario(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 42
	cfg.Population.InitialAgents = 10
	cfg.Population.InitialFood = 0
	cfg.Population.MinAgents = 5
	cfg.Population.SpawnRatios = map[string]float64{"aggressive": 1}

	g := newTestGame(cfg)
	if s := g.Stats(); s.Live != 10 || s.Count(components.StrategyAggressive) != 10 {
		t.Fatalf("initial population = %+v", s.ByStrategy)
	}

	prev := 10
	reached := false
	for tick := 1; tick <= 7300; tick++ {
		g.Step()
		s := g.Stats()
		if s.Births != 0 {
			t.Fatalf("tick %d: %d voluntary births without food", tick, s.Births)
		}
		if s.Count(components.StrategyAggressive) != s.Live {
			t.Fatalf("tick %d: non-aggressive agent appeared: %v", tick, s.ByStrategy)
		}
		if s.Live < 5 {
			t.Fatalf("tick %d: live %d below floor", tick, s.Live)
		}
		if !reached {
			if s.Live > prev {
				t.Fatalf("tick %d: population rose from %d to %d before reaching the floor", tick, prev, s.Live)
			}
			reached = s.Live == 5
		} else {
			if s.Live != 5 {
				t.Fatalf("tick %d: live %d after reaching the floor, want 5", tick, s.Live)
			}
			if s.FloorSpawns != s.Deaths {
				t.Fatalf("tick %d: %d floor spawns for %d deaths", tick, s.FloorSpawns, s.Deaths)
			}
		}
		prev = s.Live
	}
	if !reached {
		t.Fatal("population never reached the floor")
	}
	s := g.Stats()
	if s.TotalBirths != 0 {
		t.Errorf("total births = %d, want 0", s.TotalBirths)
	}
	// Every founder has passed max_age by now, so the floor must have acted.
	if s.TotalFloorSpawns < 5 {
		t.Errorf("floor spawns = %d, want at least 5", s.TotalFloorSpawns)
	}
}

func TestEnergyInvariantAndFloor(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 9
	g := newTestGame(cfg)
	food := rand.New(rand.NewSource(3))
	maxEnergy := g.Config().Entity.MaxEnergy

	var f Frame
	for tick := 1; tick <= 1500; tick++ {
		if tick%10 == 0 {
			g.AcquireFood(food.Float64()*cfg.World.Width, food.Float64()*cfg.World.Height)
		}
		g.Step()
		g.Frame(&f)
		for _, a := range f.Agents {
			if a.Energy < 0 || a.Energy > maxEnergy {
				t.Fatalf("tick %d: agent %d energy %v out of [0, %v]", tick, a.ID, a.Energy, maxEnergy)
			}
		}
		if s := g.Stats(); s.Live < g.Config().Population.MinAgents {
			t.Fatalf("tick %d: live %d below floor %d", tick, s.Live, g.Config().Population.MinAgents)
		}
		if len(f.Agents) != g.AgentCount() {
			t.Fatalf("tick %d: %d agents in frame, %d in pool", tick, len(f.Agents), g.AgentCount())
		}
	}
}

func TestStatsAccounting(t *testing.T) {
	g := newTestGame(config.Default())
	before := g.Stats()
	for i := 0; i < 600; i++ {
		g.Step()
		s := g.Stats()
		if s.Deaths != s.StarvationDeaths+s.CombatDeaths+s.AgeDeaths {
			t.Fatalf("tick %d: deaths %d != sum of causes", s.Tick, s.Deaths)
		}
		want := before.Live + s.Births + s.FloorSpawns - s.Deaths
		if s.Live != want {
			t.Fatalf("tick %d: live %d, want %d from births/deaths", s.Tick, s.Live, want)
		}
		if s.LiveFood != g.FoodCount() {
			t.Fatalf("tick %d: food %d, pool has %d", s.Tick, s.LiveFood, g.FoodCount())
		}
		before = s
	}
}

func TestStepAndPause(t *testing.T) {
	cfg := config.Default()
	cfg.Physics.DT = 0.25
	cfg.Physics.MaxStepsPerPoll = 5
	g := newTestGame(cfg)

	g.Pause()
	if n := g.Update(time.Second); n != 0 || g.Tick() != 0 {
		t.Fatalf("paused Update ran %d ticks", n)
	}
	g.Step()
	if g.Tick() != 1 || !g.Paused() {
		t.Fatalf("after Step: tick %d paused %v, want 1 true", g.Tick(), g.Paused())
	}

	g.Resume()
	if n := g.Update(500 * time.Millisecond); n != 2 {
		t.Errorf("Update(500ms) = %d ticks, want 2", n)
	}
	if n := g.Update(10 * time.Second); n != 5 {
		t.Errorf("Update(10s) = %d ticks, want the cap of 5", n)
	}
	if n := g.Update(0); n != 0 {
		t.Errorf("surplus was carried over: %d ticks", n)
	}
	g.Step()
	if g.Paused() || g.Tick() != 9 {
		t.Errorf("Step while running: tick %d paused %v", g.Tick(), g.Paused())
	}
}

func TestResetReproducesInitialSpawn(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 77
	g := newTestGame(cfg)
	initial := g.Frame(nil)

	g.Run(120)
	g.Reset(nil)
	if g.Tick() != 0 {
		t.Fatalf("tick after reset = %d", g.Tick())
	}
	again := g.Frame(nil)
	if !reflect.DeepEqual(initial.Agents, again.Agents) || !reflect.DeepEqual(initial.Food, again.Food) {
		t.Fatal("reset did not reproduce the initial spawn")
	}

	path := filepath.Join(t.TempDir(), "record.json")
	if err := config.ExportRecord(g.Config(), path); err != nil {
		t.Fatal(err)
	}
	imported, err := config.ImportRecord(config.Default(), path)
	if err != nil {
		t.Fatal(err)
	}
	fromRecord := newTestGame(imported).Frame(nil)
	if !reflect.DeepEqual(initial.Agents, fromRecord.Agents) || !reflect.DeepEqual(initial.Food, fromRecord.Food) {
		t.Fatal("imported record did not reproduce the initial spawn")
	}
}

func TestSetConfigAppliesAtTickBoundary(t *testing.T) {
	g := newTestGame(config.Default())
	version := g.Config().Version

	next := config.Default()
	next.Food.Energy = 99
	g.SetConfig(next)
	next.Food.Energy = 1 // caller's copy is not shared

	if g.Config().Food.Energy == 99 || g.Config().Version != version {
		t.Fatal("config swapped before the tick boundary")
	}
	g.Step()
	if g.Config().Food.Energy != 99 {
		t.Errorf("food energy = %v, want 99", g.Config().Food.Energy)
	}
	if g.Config().Version != version+1 {
		t.Errorf("version = %d, want %d", g.Config().Version, version+1)
	}
}

func TestResizeRefitsEntities(t *testing.T) {
	g := newTestGame(config.Default())
	g.Resize(200, 100)
	g.Step()

	f := g.Frame(nil)
	if f.Width != 200 || f.Height != 100 {
		t.Fatalf("frame size = %vx%v", f.Width, f.Height)
	}
	for _, a := range f.Agents {
		if a.X < 0 || a.X > 200 || a.Y < 0 || a.Y > 100 {
			t.Fatalf("agent %d at (%v, %v) outside the resized arena", a.ID, a.X, a.Y)
		}
	}
	for _, fd := range f.Food {
		if fd.X < 0 || fd.X > 200 || fd.Y < 0 || fd.Y > 100 {
			t.Fatalf("food %d at (%v, %v) outside the resized arena", fd.ID, fd.X, fd.Y)
		}
	}
}

func TestDegenerateGeometryIsClamped(t *testing.T) {
	cfg := config.Default()
	cfg.Spatial.CellSize = 1e-6
	g := newTestGame(cfg)
	g.Run(5)
	if g.Config().Derived.CellSize < cfg.World.Width/config.MaxGridDim {
		t.Errorf("cell size %v not floored", g.Config().Derived.CellSize)
	}

	g.Resize(1e13, 1e13)
	g.Step()
	if f := g.Frame(nil); f.Width != 1e13 || f.Height != 1e13 {
		t.Fatalf("frame size = %vx%v", f.Width, f.Height)
	}
	if s := g.Stats(); s.Live < g.Config().Population.MinAgents {
		t.Errorf("live %d below floor after resize", s.Live)
	}
}

func TestAcquireFoodClampsIntoArena(t *testing.T) {
	cfg := config.Default()
	cfg.Population.InitialFood = 0
	g := newTestGame(cfg)

	g.AcquireFood(-5, 1e9)
	g.AcquireFoodValue(10, 10, -3)
	if g.FoodCount() != 2 {
		t.Fatalf("food count = %d, want 2", g.FoodCount())
	}
	f := g.Frame(nil)
	first := f.Food[0]
	if first.X != 0 || first.Y != cfg.World.Height || first.Value != cfg.Food.Energy {
		t.Errorf("first food = %+v", first)
	}
	if f.Food[1].Value != 0 {
		t.Errorf("negative value kept: %v", f.Food[1].Value)
	}
}

func TestFrameReuse(t *testing.T) {
	g := newTestGame(config.Default())
	g.Run(300)

	var f Frame
	g.Frame(&f)
	n := len(f.Agents)
	g.Frame(&f)
	if len(f.Agents) != n {
		t.Fatalf("reused frame has %d agents, want %d", len(f.Agents), n)
	}
	for _, a := range f.Agents {
		if len(a.Memory) > components.MemoryCapacity {
			t.Fatalf("agent %d carries %d memories", a.ID, len(a.Memory))
		}
	}
	if f.Stats.Energies != nil {
		t.Error("frame exposes the stats energy buffer")
	}
}

func TestTelemetrySinks(t *testing.T) {
	dir := t.TempDir()
	out, err := telemetry.NewOutputManager(filepath.Join(dir, "out"))
	if err != nil {
		t.Fatal(err)
	}
	rec, err := telemetry.NewRecorder(filepath.Join(dir, "frames.jsonl.zst"))
	if err != nil {
		t.Fatal(err)
	}

	var windows []telemetry.WindowStats
	g := New(config.Default(), Options{
		Logger:      quietLogger(),
		Collector:   telemetry.NewCollector(10, 1.0/60),
		Output:      out,
		Perf:        telemetry.NewPerfCollector(10),
		LogStats:    true,
		Recorder:    rec,
		RecordEvery: 5,
		OnWindow:    func(w telemetry.WindowStats) { windows = append(windows, w) },
	})
	g.Run(35)
	g.Close()

	if len(windows) != 4 {
		t.Fatalf("flushed %d windows, want 4", len(windows))
	}
	for i, w := range windows[:3] {
		if w.WindowEndTick != int64(10*(i+1)) {
			t.Errorf("window %d ends at %d", i, w.WindowEndTick)
		}
	}
	if windows[3].WindowEndTick != 35 {
		t.Errorf("partial window ends at %d, want 35", windows[3].WindowEndTick)
	}
	if rec.Lines() != 7 {
		t.Errorf("recorded %d frames, want 7", rec.Lines())
	}
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}
}
