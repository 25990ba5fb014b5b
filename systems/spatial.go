// Package systems contains the per-tick simulation systems and the
// structures they share: the seeded RNG, the spatial grid and the entity
// pools.
package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"
)

// Neighbor holds a nearby entity with precomputed spatial data.
type Neighbor struct {
	E      ecs.Entity
	DX, DY float64 // delta from query origin to the entity
	DistSq float64
}

type gridEntry struct {
	e    ecs.Entity
	x, y float64
}

type gridSlot struct {
	cell int
	idx  int
}

// maxGridDim bounds the grid to maxGridDim cells per axis. Finer cell sizes
// are coarsened to fit.
const maxGridDim = 1024

// SpatialGrid provides radius lookups over a uniform cell grid.
// Each tracked entity lives in exactly one cell, chosen from the position
// given to its last Insert or Update. Positions outside the bounds are
// kept in the nearest edge cell, so queries stay exact for any input.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	width    float64
	height   float64
	cells    [][]gridEntry
	where    map[ecs.Entity]gridSlot
}

// NewSpatialGrid creates a spatial grid covering the given world size.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	g := &SpatialGrid{where: make(map[ecs.Entity]gridSlot)}
	g.layout(width, height, cellSize)
	return g
}

func (g *SpatialGrid) layout(width, height, cellSize float64) {
	if !(width > 0) || math.IsInf(width, 0) {
		width = 1
	}
	if !(height > 0) || math.IsInf(height, 0) {
		height = 1
	}
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		cellSize = math.Max(width, height)
	}
	cellSize = math.Max(cellSize, math.Max(width, height)/maxGridDim)
	g.width, g.height, g.cellSize = width, height, cellSize
	g.cols = gridDim(width, cellSize)
	g.rows = gridDim(height, cellSize)

	n := g.cols * g.rows
	if cap(g.cells) >= n {
		g.cells = g.cells[:n]
		for i := range g.cells {
			g.cells[i] = g.cells[i][:0]
		}
		return
	}
	g.cells = make([][]gridEntry, n)
	for i := range g.cells {
		g.cells[i] = make([]gridEntry, 0, 8)
	}
}

// gridDim returns the cell count along an axis, within [1, maxGridDim].
func gridDim(extent, cellSize float64) int {
	n := math.Ceil(extent / cellSize)
	if !(n >= 1) {
		return 1
	}
	if n > maxGridDim {
		return maxGridDim
	}
	return int(n)
}

// Len returns the number of tracked entities.
func (g *SpatialGrid) Len() int { return len(g.where) }

// CellSize returns the current cell edge length.
func (g *SpatialGrid) CellSize() float64 { return g.cellSize }

// Dims returns the grid dimensions in cells.
func (g *SpatialGrid) Dims() (cols, rows int) { return g.cols, g.rows }

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	clear(g.where)
}

// Insert places e at (x, y). Inserting a tracked entity relocates it.
func (g *SpatialGrid) Insert(e ecs.Entity, x, y float64) {
	g.Update(e, x, y)
}

// Update relocates e to (x, y), inserting it if it is not tracked.
func (g *SpatialGrid) Update(e ecs.Entity, x, y float64) {
	cell := g.cellIndex(x, y)
	if s, ok := g.where[e]; ok {
		if s.cell == cell {
			g.cells[cell][s.idx].x = x
			g.cells[cell][s.idx].y = y
			return
		}
		g.detach(s)
	}
	g.where[e] = gridSlot{cell: cell, idx: len(g.cells[cell])}
	g.cells[cell] = append(g.cells[cell], gridEntry{e: e, x: x, y: y})
}

// Remove drops e from the grid. Untracked entities are ignored.
func (g *SpatialGrid) Remove(e ecs.Entity) {
	s, ok := g.where[e]
	if !ok {
		return
	}
	g.detach(s)
	delete(g.where, e)
}

// detach swap-removes the entry at s and fixes up the moved entry's slot.
func (g *SpatialGrid) detach(s gridSlot) {
	list := g.cells[s.cell]
	last := len(list) - 1
	if s.idx != last {
		list[s.idx] = list[last]
		g.where[list[s.idx].e] = s
	}
	g.cells[s.cell] = list[:last]
}

// Position returns the position e was last indexed at.
func (g *SpatialGrid) Position(e ecs.Entity) (x, y float64, ok bool) {
	s, ok := g.where[e]
	if !ok {
		return 0, 0, false
	}
	en := g.cells[s.cell][s.idx]
	return en.x, en.y, true
}

// Resize recomputes the cell geometry and reinserts every tracked entity.
func (g *SpatialGrid) Resize(width, height, cellSize float64) {
	var entries []gridEntry
	for _, list := range g.cells {
		entries = append(entries, list...)
	}
	g.layout(width, height, cellSize)
	clear(g.where)
	for _, en := range entries {
		g.Update(en.e, en.x, en.y)
	}
}

// QueryRadiusInto appends every tracked entity within radius of (x, y),
// other than exclude, to dst and returns the extended slice. Reuse dst
// across calls to avoid allocations. Results are ordered by cell, then by
// position within the cell. A negative or NaN radius yields no results.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, x, y, radius float64, exclude ecs.Entity) []Neighbor {
	if !(radius >= 0) || math.IsNaN(x) || math.IsNaN(y) {
		return dst
	}
	radiusSq := radius * radius

	minCol := g.cellCoord(x-radius, g.cols)
	maxCol := g.cellCoord(x+radius, g.cols)
	minRow := g.cellCoord(y-radius, g.rows)
	maxRow := g.cellCoord(y+radius, g.rows)

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			for _, en := range g.cells[row*g.cols+col] {
				if en.e == exclude {
					continue
				}
				dx := en.x - x
				dy := en.y - y
				distSq := dx*dx + dy*dy
				if distSq <= radiusSq {
					dst = append(dst, Neighbor{E: en.e, DX: dx, DY: dy, DistSq: distSq})
				}
			}
		}
	}
	return dst
}

// QueryNearInto is QueryRadiusInto around e's indexed position, excluding e.
// An untracked e yields no results.
func (g *SpatialGrid) QueryNearInto(dst []Neighbor, e ecs.Entity, radius float64) []Neighbor {
	x, y, ok := g.Position(e)
	if !ok {
		return dst
	}
	return g.QueryRadiusInto(dst, x, y, radius, e)
}

// cellIndex returns the flat index for a world position.
func (g *SpatialGrid) cellIndex(x, y float64) int {
	return g.cellCoord(y, g.rows)*g.cols + g.cellCoord(x, g.cols)
}

// cellCoord maps a world coordinate to a cell coordinate clamped to [0, n).
func (g *SpatialGrid) cellCoord(v float64, n int) int {
	c := math.Floor(v / g.cellSize)
	if !(c >= 0) {
		return 0
	}
	if c >= float64(n) {
		return n - 1
	}
	return int(c)
}
