package pheromone

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidDimensions is returned for a grid with a non-positive side.
	ErrInvalidDimensions = errors.New("invalid grid dimensions")
	// ErrCorrupt is returned when persisted grid data cannot be applied.
	ErrCorrupt = errors.New("corrupt grid data")
)

// Grid is a dense width×height array of optional Pheromone records,
// addressed as index = z*width + x. Slots stay nil until first written.
type Grid struct {
	width     int
	height    int
	cells     []*Pheromone
	populated int
	clock     Clock
}

// NewGrid allocates an empty grid. Dimensions are fixed for its lifetime.
func NewGrid(width, height int, clock Clock) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("new grid %dx%d: %w", width, height, ErrInvalidDimensions)
	}
	if clock == nil {
		return nil, errors.New("new grid: nil clock")
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]*Pheromone, width*height),
		clock:  clock,
	}, nil
}

// Width and Height return the grid size in cells along X and Z.
func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Count returns the slot capacity (width*height), not the populated count.
func (g *Grid) Count() int { return len(g.cells) }

// Populated returns the number of materialized cells.
func (g *Grid) Populated() int { return g.populated }

// InBounds reports whether (x, z) addresses a slot.
func (g *Grid) InBounds(x, z int32) bool {
	return x >= 0 && int(x) < g.width && z >= 0 && int(z) < g.height
}

func (g *Grid) index(x, z int32) int {
	return int(z)*g.width + int(x)
}

// slot returns the slot index for (x, z), or -1 when out of bounds.
func (g *Grid) slot(x, z int32) int {
	if !g.InBounds(x, z) {
		return -1
	}
	return g.index(x, z)
}

func (g *Grid) store(idx int, p Pheromone) {
	if cell := g.cells[idx]; cell != nil {
		*cell = p
		return
	}
	g.cells[idx] = &p
	g.populated++
}

// IterateCells calls fn for every populated cell in row-major order
// (z outer, x inner). fn must not mutate the grid.
func (g *Grid) IterateCells(fn func(x, z int32, p Pheromone)) {
	for z := 0; z < g.height; z++ {
		row := z * g.width
		for x := 0; x < g.width; x++ {
			if cell := g.cells[row+x]; cell != nil {
				fn(int32(x), int32(z), *cell)
			}
		}
	}
}

// Get returns the record at (x, z). Out of bounds yields Empty. An unset
// slot yields Empty, and is materialized with a default record first when
// create is true.
func (g *Grid) Get(x, z int32, create bool) Pheromone {
	idx := g.slot(x, z)
	if idx < 0 {
		return Empty
	}
	if cell := g.cells[idx]; cell != nil {
		return *cell
	}
	if create {
		g.store(idx, Pheromone{})
	}
	return Empty
}

// Lookup returns the record at (x, z) and whether the slot is populated.
// It never materializes a slot.
func (g *Grid) Lookup(x, z int32) (Pheromone, bool) {
	idx := g.slot(x, z)
	if idx < 0 || g.cells[idx] == nil {
		return Empty, false
	}
	return *g.cells[idx], true
}

// SetTimestamp stamps (x, z). An existing record keeps its target and count.
func (g *Grid) SetTimestamp(x, z int32, s Stamp) {
	idx := g.slot(x, z)
	if idx < 0 {
		return
	}
	if cell := g.cells[idx]; cell != nil {
		cell.Timestamp = s.resolve(g.clock)
		return
	}
	g.store(idx, NewPheromone(g.clock, s))
}

// ChangeAgentCount adds delta to the agent count at (x, z), clamping the
// result to [0, MaxInt32]. An unset slot starts from a default record.
func (g *Grid) ChangeAgentCount(x, z int32, delta int32) {
	idx := g.slot(x, z)
	if idx < 0 {
		return
	}
	cell := g.cells[idx]
	if cell == nil {
		g.store(idx, Pheromone{AgentCount: saturate(0, delta)})
		return
	}
	cell.AgentCount = saturate(cell.AgentCount, delta)
}

func saturate(count, delta int32) int32 {
	n := int64(count) + int64(delta)
	switch {
	case n < 0:
		return 0
	case n > math.MaxInt32:
		return math.MaxInt32
	}
	return int32(n)
}

// SetTarget replaces the record at (x, z) with a fresh one steering toward
// target. The agent count is reset to zero.
func (g *Grid) SetTarget(x, z int32, target Vec2, s Stamp) {
	idx := g.slot(x, z)
	if idx < 0 {
		return
	}
	g.store(idx, NewTargeted(target, g.clock, s))
}
