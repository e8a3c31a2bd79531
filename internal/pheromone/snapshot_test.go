package pheromone

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populated(g *Grid) map[Vec2]Pheromone {
	out := make(map[Vec2]Pheromone)
	g.IterateCells(func(x, z int32, p Pheromone) { out[Vec2{X: x, Z: z}] = p })
	return out
}

func TestSnapshot_RoundTrip(t *testing.T) {
	t.Parallel()
	g, clk := newTestGrid(t, 6, 4)
	g.ChangeAgentCount(0, 0, 3)
	g.SetTarget(5, 3, Vec2{X: 1, Z: 2}, At(77))
	clk.now = 500
	g.SetTimestamp(2, 1, Now)
	g.SetTimestamp(3, 1, At(0))
	g.Get(4, 0, true)

	blob, err := g.MarshalBinary()
	require.NoError(t, err)

	restored, err := NewGrid(6, 4, clk)
	require.NoError(t, err)
	require.NoError(t, restored.UnmarshalBinary(blob))

	if diff := cmp.Diff(populated(g), populated(restored)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, g.Populated(), restored.Populated())
	assert.Equal(t, g.Count(), restored.Count())
}

func TestSnapshot_EmptyGrid(t *testing.T) {
	t.Parallel()
	g, clk := newTestGrid(t, 3, 3)
	blob, err := g.MarshalBinary()
	require.NoError(t, err)

	other, _ := NewGrid(3, 3, clk)
	other.ChangeAgentCount(1, 1, 1)
	require.NoError(t, other.UnmarshalBinary(blob))
	assert.Zero(t, other.Populated(), "restore replaces existing contents")
}

func TestSnapshot_DimensionMismatch(t *testing.T) {
	t.Parallel()
	g, clk := newTestGrid(t, 4, 4)
	g.ChangeAgentCount(3, 3, 1)
	blob, err := g.MarshalBinary()
	require.NoError(t, err)

	for _, dims := range [][2]int{{4, 5}, {5, 4}, {2, 8}} {
		other, err := NewGrid(dims[0], dims[1], clk)
		require.NoError(t, err)
		other.ChangeAgentCount(0, 0, 2)

		err = other.UnmarshalBinary(blob)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCorrupt)
		var dm *DimensionMismatchError
		require.True(t, errors.As(err, &dm))
		assert.Equal(t, 4, dm.SnapWidth)
		assert.Equal(t, dims[0], dm.Width)

		assert.Equal(t, int32(2), other.Get(0, 0, false).AgentCount, "grid untouched on error")
		assert.Equal(t, 1, other.Populated())
	}
}

func TestRestore_RejectsBadIndex(t *testing.T) {
	t.Parallel()
	g, _ := newTestGrid(t, 2, 2)
	g.ChangeAgentCount(0, 0, 1)

	err := g.Restore(Snapshot{Width: 2, Height: 2, Slots: 4, Cells: []SnapshotCell{
		{Index: 1, Cell: Pheromone{AgentCount: 5}},
		{Index: 4, Cell: Pheromone{}},
	}})
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.Equal(t, int32(1), g.Get(0, 0, false).AgentCount)

	err = g.Restore(Snapshot{Width: 2, Height: 2, Slots: 4, Cells: []SnapshotCell{{Index: -1}}})
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestRestore_ClampsNegativeCounts(t *testing.T) {
	t.Parallel()
	g, _ := newTestGrid(t, 2, 1)
	require.NoError(t, g.Restore(Snapshot{Width: 2, Height: 1, Slots: 2, Cells: []SnapshotCell{
		{Index: 1, Cell: Pheromone{AgentCount: -3, Timestamp: -1}},
	}}))
	p, ok := g.Lookup(1, 0)
	require.True(t, ok)
	assert.Zero(t, p.AgentCount)
	assert.Equal(t, int64(-1), p.Timestamp, "timestamps are kept as stored")

	g.ChangeAgentCount(1, 0, 1)
	assert.Equal(t, int32(1), g.Get(1, 0, false).AgentCount)
}

func TestDecodeSnapshot_Garbage(t *testing.T) {
	t.Parallel()
	_, err := DecodeSnapshot(nil)
	assert.ErrorIs(t, err, ErrCorrupt)
	_, err = DecodeSnapshot([]byte("not gzip"))
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestSnapshot_Coord(t *testing.T) {
	t.Parallel()
	s := Snapshot{Width: 5, Height: 3, Slots: 15}
	x, z := s.Coord(SnapshotCell{Index: 13})
	assert.Equal(t, int32(3), x)
	assert.Equal(t, int32(2), z)
}
