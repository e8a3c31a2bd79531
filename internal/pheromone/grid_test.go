package pheromone

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now int64 }

func (c *fakeClock) Tick() int64 { return c.now }

func newTestGrid(t *testing.T, w, h int) (*Grid, *fakeClock) {
	t.Helper()
	clk := &fakeClock{now: 100}
	g, err := NewGrid(w, h, clk)
	require.NoError(t, err)
	return g, clk
}

func TestNewGrid_RejectsBadDimensions(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct{ w, h int }{{0, 5}, {5, 0}, {-1, 3}, {3, -7}} {
		_, err := NewGrid(tc.w, tc.h, &fakeClock{})
		assert.ErrorIs(t, err, ErrInvalidDimensions, "%dx%d", tc.w, tc.h)
	}
	_, err := NewGrid(2, 2, nil)
	assert.Error(t, err)
}

func TestGrid_CountIsCapacity(t *testing.T) {
	t.Parallel()
	g, _ := newTestGrid(t, 7, 3)
	assert.Equal(t, 21, g.Count())
	assert.Equal(t, 0, g.Populated())

	g.ChangeAgentCount(1, 1, 1)
	assert.Equal(t, 21, g.Count())
	assert.Equal(t, 1, g.Populated())
}

func TestGrid_OutOfBounds(t *testing.T) {
	t.Parallel()
	g, _ := newTestGrid(t, 4, 3)

	for _, p := range []Vec2{{-1, 0}, {0, -1}, {4, 0}, {0, 3}, {4, 3}, {math.MinInt32, math.MaxInt32}} {
		g.SetTimestamp(p.X, p.Z, Now)
		g.SetTimestamp(p.X, p.Z, At(9))
		g.ChangeAgentCount(p.X, p.Z, 5)
		g.SetTarget(p.X, p.Z, Vec2{X: 1, Z: 1}, Now)

		got := g.Get(p.X, p.Z, true)
		assert.Equal(t, Empty, got)
		assert.False(t, got.HasTarget)
		assert.Zero(t, got.AgentCount)

		_, ok := g.Lookup(p.X, p.Z)
		assert.False(t, ok)
	}
	assert.Zero(t, g.Populated())
}

func TestGrid_GetCreate(t *testing.T) {
	t.Parallel()
	g, _ := newTestGrid(t, 3, 3)

	assert.Equal(t, Empty, g.Get(1, 2, false))
	assert.Zero(t, g.Populated(), "no-create read must not materialize")

	assert.Equal(t, Empty, g.Get(1, 2, true))
	assert.Equal(t, 1, g.Populated())
	p, ok := g.Lookup(1, 2)
	require.True(t, ok)
	assert.Equal(t, Pheromone{}, p)
}

func TestGrid_ReturnedRecordsAreCopies(t *testing.T) {
	t.Parallel()
	g, _ := newTestGrid(t, 2, 2)
	g.ChangeAgentCount(0, 0, 3)

	p := g.Get(0, 0, false)
	p.AgentCount = -40
	assert.Equal(t, int32(3), g.Get(0, 0, false).AgentCount)

	e := g.Get(-1, -1, false)
	e.AgentCount = 9
	assert.Zero(t, g.Get(-1, -1, false).AgentCount)
	assert.Zero(t, Empty.AgentCount)
}

func TestGrid_LazyAllocation(t *testing.T) {
	t.Parallel()
	g, _ := newTestGrid(t, 5, 5)

	visits := 0
	g.IterateCells(func(int32, int32, Pheromone) { visits++ })
	assert.Zero(t, visits)

	g.ChangeAgentCount(3, 2, 4)

	type visit struct {
		x, z int32
		p    Pheromone
	}
	var got []visit
	g.IterateCells(func(x, z int32, p Pheromone) { got = append(got, visit{x, z, p}) })
	require.Len(t, got, 1)
	assert.Equal(t, int32(3), got[0].x)
	assert.Equal(t, int32(2), got[0].z)
	assert.Equal(t, int32(4), got[0].p.AgentCount)
}

func TestGrid_ChangeAgentCountSaturates(t *testing.T) {
	t.Parallel()
	g, _ := newTestGrid(t, 2, 2)

	g.ChangeAgentCount(0, 0, -5)
	assert.Zero(t, g.Get(0, 0, false).AgentCount)
	assert.Equal(t, 1, g.Populated(), "negative delta still materializes the cell")

	g.ChangeAgentCount(1, 1, 3)
	g.ChangeAgentCount(1, 1, -1)
	assert.Equal(t, int32(2), g.Get(1, 1, false).AgentCount)

	g.ChangeAgentCount(1, 1, math.MinInt32)
	assert.Zero(t, g.Get(1, 1, false).AgentCount)

	g.ChangeAgentCount(1, 0, math.MaxInt32)
	g.ChangeAgentCount(1, 0, 10)
	assert.Equal(t, int32(math.MaxInt32), g.Get(1, 0, false).AgentCount)
}

func TestGrid_ChangeAgentCountKeepsOtherFields(t *testing.T) {
	t.Parallel()
	g, _ := newTestGrid(t, 2, 2)
	g.SetTarget(0, 1, Vec2{X: 1, Z: 0}, At(55))
	g.ChangeAgentCount(0, 1, 2)

	p := g.Get(0, 1, false)
	assert.True(t, p.HasTarget)
	assert.Equal(t, Vec2{X: 1, Z: 0}, p.Target)
	assert.Equal(t, int64(55), p.Timestamp)
	assert.Equal(t, int32(2), p.AgentCount)
}

func TestGrid_SetTargetOverwrites(t *testing.T) {
	t.Parallel()
	g, clk := newTestGrid(t, 3, 3)
	g.ChangeAgentCount(2, 2, 7)
	g.SetTimestamp(2, 2, At(3))

	clk.now = 250
	g.SetTarget(2, 2, Vec2{X: 0, Z: 1}, Now)

	p := g.Get(2, 2, false)
	assert.Zero(t, p.AgentCount)
	assert.True(t, p.HasTarget)
	assert.Equal(t, Vec2{X: 0, Z: 1}, p.Target)
	assert.Equal(t, int64(250), p.Timestamp)
	assert.Equal(t, 1, g.Populated())
}

func TestGrid_SetTargetOriginIsATarget(t *testing.T) {
	t.Parallel()
	g, _ := newTestGrid(t, 2, 2)
	g.SetTarget(1, 1, Vec2{}, Now)
	p := g.Get(1, 1, false)
	assert.True(t, p.HasTarget)
	assert.Equal(t, Vec2{}, p.Target)
}

func TestGrid_SetTimestamp(t *testing.T) {
	t.Parallel()
	g, clk := newTestGrid(t, 4, 4)

	g.SetTimestamp(1, 1, Now)
	assert.Equal(t, int64(100), g.Get(1, 1, false).Timestamp)

	clk.now = 180
	g.SetTimestamp(1, 1, Now)
	assert.Equal(t, int64(180), g.Get(1, 1, false).Timestamp)

	g.SetTimestamp(1, 1, At(0))
	assert.Zero(t, g.Get(1, 1, false).Timestamp, "explicit zero is stored literally")

	g.SetTimestamp(2, 3, At(0))
	p, ok := g.Lookup(2, 3)
	require.True(t, ok)
	assert.Zero(t, p.Timestamp)
	assert.False(t, p.HasTarget)
}

func TestGrid_SetTimestampKeepsTargetAndCount(t *testing.T) {
	t.Parallel()
	g, clk := newTestGrid(t, 2, 2)
	g.SetTarget(0, 0, Vec2{X: 1, Z: 1}, Now)
	g.ChangeAgentCount(0, 0, 4)

	clk.now = 333
	g.SetTimestamp(0, 0, Now)

	p := g.Get(0, 0, false)
	assert.Equal(t, int64(333), p.Timestamp)
	assert.Equal(t, int32(4), p.AgentCount)
	assert.Equal(t, Vec2{X: 1, Z: 1}, p.Target)
}

func TestGrid_IterateRowMajor(t *testing.T) {
	t.Parallel()
	g, _ := newTestGrid(t, 2, 2)
	// populate in reverse so insertion order cannot leak into visit order
	for _, p := range []Vec2{{1, 1}, {0, 1}, {1, 0}, {0, 0}} {
		g.ChangeAgentCount(p.X, p.Z, 1)
	}

	var order []Vec2
	g.IterateCells(func(x, z int32, _ Pheromone) { order = append(order, Vec2{X: x, Z: z}) })
	assert.Equal(t, []Vec2{{0, 0}, {1, 0}, {0, 1}, {1, 1}}, order)
}

func TestGrid_IndexIsRowMajor(t *testing.T) {
	t.Parallel()
	g, _ := newTestGrid(t, 5, 3)
	g.ChangeAgentCount(4, 1, 1)

	snap := g.Snapshot()
	require.Len(t, snap.Cells, 1)
	assert.Equal(t, 1*5+4, snap.Cells[0].Index)
}

func TestPheromone_Constructors(t *testing.T) {
	t.Parallel()
	clk := ClockFunc(func() int64 { return 42 })

	assert.Equal(t, Pheromone{}, Empty)
	assert.Equal(t, Pheromone{Timestamp: 42}, NewPheromone(clk, Now))
	assert.Equal(t, Pheromone{Timestamp: 7}, NewPheromone(clk, At(7)))
	assert.Equal(t, Pheromone{}, NewPheromone(clk, At(0)))
	assert.Equal(t,
		Pheromone{Target: Vec2{X: 3, Z: 4}, HasTarget: true, Timestamp: 42},
		NewTargeted(Vec2{X: 3, Z: 4}, clk, Now))
}

func TestPheromone_Age(t *testing.T) {
	t.Parallel()
	p := Pheromone{Timestamp: 10}
	assert.Equal(t, int64(15), p.Age(25))
	assert.Zero(t, p.Age(5))
}

func TestVec3_Flat(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Vec2{X: 1, Z: 3}, Vec3{X: 1, Y: 2, Z: 3}.Flat())
}
