package systems

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/mlange-42/ark/ecs"
)

type point struct {
	e    ecs.Entity
	x, y float64
}

func spawnPoints(t *testing.T, n int, w, h float64, rng *rand.Rand) (*FoodPool, []point) {
	t.Helper()
	pool := NewFoodPool(ecs.NewWorld())
	pts := make([]point, n)
	for i := range pts {
		// Spill a margin outside the bounds to exercise edge-cell clamping.
		x := rng.Float64()*(w+100) - 50
		y := rng.Float64()*(h+100) - 50
		pts[i] = point{e: pool.Acquire(x, y, 1), x: x, y: y}
	}
	return pool, pts
}

func indexOf(pts []point) map[ecs.Entity]int {
	idx := make(map[ecs.Entity]int, len(pts))
	for i, p := range pts {
		idx[p.e] = i
	}
	return idx
}

func TestQueryRadiusMatchesBruteForce(t *testing.T) {
	const w, h = 640.0, 360.0
	densities := []int{0, 1, 10, 200, 2000}
	radii := []float64{0, 3, 25, 80, 500}

	for _, n := range densities {
		rng := rand.New(rand.NewSource(int64(n) + 7))
		_, pts := spawnPoints(t, n, w, h, rng)
		idx := indexOf(pts)
		grid := NewSpatialGrid(w, h, 40)
		for _, p := range pts {
			grid.Insert(p.e, p.x, p.y)
		}
		if grid.Len() != n {
			t.Fatalf("Len = %d, want %d", grid.Len(), n)
		}

		var buf []Neighbor
		for q := 0; q < 50; q++ {
			qx := rng.Float64()*(w+400) - 200
			qy := rng.Float64()*(h+400) - 200
			for _, r := range radii {
				buf = grid.QueryRadiusInto(buf[:0], qx, qy, r, ecs.Entity{})

				var want []int
				for i, p := range pts {
					dx, dy := p.x-qx, p.y-qy
					if dx*dx+dy*dy <= r*r {
						want = append(want, i)
					}
				}
				got := make([]int, len(buf))
				for i, nb := range buf {
					got[i] = idx[nb.E]
				}
				sort.Ints(got)
				if len(got) != len(want) {
					t.Fatalf("n=%d query (%.1f,%.1f) r=%v: got %d results, want %d", n, qx, qy, r, len(got), len(want))
				}
				for i := range got {
					if got[i] != want[i] {
						t.Fatalf("n=%d query (%.1f,%.1f) r=%v: result sets differ", n, qx, qy, r)
					}
				}
			}
		}
	}
}

func TestQueryRadiusDegenerateInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, pts := spawnPoints(t, 20, 100, 100, rng)
	grid := NewSpatialGrid(100, 100, 10)
	for _, p := range pts {
		grid.Insert(p.e, p.x, p.y)
	}

	tests := []struct {
		name   string
		x, y   float64
		radius float64
	}{
		{"negative radius", 50, 50, -1},
		{"far away", 1e9, -1e9, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := grid.QueryRadiusInto(nil, tt.x, tt.y, tt.radius, ecs.Entity{}); len(got) != 0 {
				t.Errorf("got %d results, want 0", len(got))
			}
		})
	}

	empty := NewSpatialGrid(100, 100, 10)
	if got := empty.QueryRadiusInto(nil, 50, 50, 1000, ecs.Entity{}); len(got) != 0 {
		t.Errorf("empty grid returned %d results", len(got))
	}
}

func TestGridDimsBounded(t *testing.T) {
	tests := []struct {
		name                string
		width, height, cell float64
	}{
		{"tiny cell", 1280, 720, 1e-6},
		{"huge arena", 1e13, 1e13, 80},
		{"huge and tiny", 1e300, 1e300, 1e-300},
		{"zero cell", 1280, 720, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := NewSpatialGrid(tt.width, tt.height, tt.cell)
			cols, rows := grid.Dims()
			if cols < 1 || rows < 1 || cols > maxGridDim || rows > maxGridDim {
				t.Fatalf("dims = %dx%d", cols, rows)
			}
			pool := NewFoodPool(ecs.NewWorld())
			e := pool.Acquire(tt.width/2, tt.height/2, 1)
			grid.Insert(e, tt.width/2, tt.height/2)
			if got := grid.QueryRadiusInto(nil, tt.width/2, tt.height/2, 1, ecs.Entity{}); len(got) != 1 {
				t.Errorf("query found %d entries, want 1", len(got))
			}
		})
	}

	grid := NewSpatialGrid(100, 100, 10)
	grid.Resize(1e13, 1e13, 1e-6)
	if cols, rows := grid.Dims(); cols > maxGridDim || rows > maxGridDim {
		t.Errorf("resized dims = %dx%d", cols, rows)
	}
}

func TestUpdateRemoveKeepOneCell(t *testing.T) {
	pool := NewFoodPool(ecs.NewWorld())
	a := pool.Acquire(0, 0, 1)
	b := pool.Acquire(0, 0, 1)
	c := pool.Acquire(0, 0, 1)

	grid := NewSpatialGrid(100, 100, 10)
	grid.Insert(a, 5, 5)
	grid.Insert(b, 6, 6)
	grid.Insert(c, 7, 7)

	// Move a far away; it must no longer be found near the origin cell.
	grid.Update(a, 95, 95)
	near := grid.QueryRadiusInto(nil, 5, 5, 4, ecs.Entity{})
	for _, n := range near {
		if n.E == a {
			t.Fatal("moved entity still reported at its old cell")
		}
	}
	if got := len(grid.QueryRadiusInto(nil, 95, 95, 1, ecs.Entity{})); got != 1 {
		t.Errorf("moved entity found %d times at new position, want 1", got)
	}

	grid.Remove(b)
	grid.Remove(b) // untracked: no-op
	if grid.Len() != 2 {
		t.Errorf("Len after remove = %d, want 2", grid.Len())
	}
	if x, y, ok := grid.Position(c); !ok || x != 7 || y != 7 {
		t.Errorf("Position(c) = %v,%v,%v after swap-remove", x, y, ok)
	}
	if _, _, ok := grid.Position(b); ok {
		t.Error("removed entity still tracked")
	}
}

func TestQueryNearExcludesSelf(t *testing.T) {
	pool := NewFoodPool(ecs.NewWorld())
	a := pool.Acquire(0, 0, 1)
	b := pool.Acquire(0, 0, 1)
	grid := NewSpatialGrid(100, 100, 10)
	grid.Insert(a, 50, 50)
	grid.Insert(b, 53, 54)

	got := grid.QueryNearInto(nil, a, 10)
	if len(got) != 1 || got[0].E != b {
		t.Fatalf("QueryNearInto = %+v, want only b", got)
	}
	if got[0].DX != 3 || got[0].DY != 4 || got[0].DistSq != 25 {
		t.Errorf("neighbor delta = (%v,%v,%v), want (3,4,25)", got[0].DX, got[0].DY, got[0].DistSq)
	}

	untracked := pool.Acquire(0, 0, 1)
	if got := grid.QueryNearInto(nil, untracked, 100); len(got) != 0 {
		t.Errorf("untracked entity query returned %d results", len(got))
	}
}

func TestResizeReinsertsEverything(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	_, pts := spawnPoints(t, 300, 200, 200, rng)
	grid := NewSpatialGrid(200, 200, 20)
	for _, p := range pts {
		grid.Insert(p.e, p.x, p.y)
	}

	grid.Resize(800, 400, 55)
	if grid.Len() != len(pts) {
		t.Fatalf("Len after resize = %d, want %d", grid.Len(), len(pts))
	}
	cols, rows := grid.Dims()
	if cols != 15 || rows != 8 {
		t.Errorf("Dims = %dx%d, want 15x8", cols, rows)
	}
	got := grid.QueryRadiusInto(nil, 100, 100, 1e6, ecs.Entity{})
	if len(got) != len(pts) {
		t.Errorf("full query after resize returned %d, want %d", len(got), len(pts))
	}
}
