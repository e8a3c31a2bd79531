package world

import (
	"fmt"

	"github.com/l1jgo/pheromone/internal/pheromone"
)

// EmitNoise points every cell within Chebyshev distance radius of src at
// src, so agents following trails converge on it. Cell agent counts are
// kept. Returns the number of cells marked.
func (s *State) EmitNoise(mapID int16, src pheromone.Vec2, radius int32) (int, error) {
	g := s.grids[mapID]
	if g == nil {
		return 0, fmt.Errorf("emit noise on map %d: %w", mapID, ErrUnknownMap)
	}
	if radius < 0 {
		radius = 0
	}

	// clamp the square to the map so huge radii stay cheap
	x0, x1 := clampSpan(int64(src.X)-int64(radius), int64(src.X)+int64(radius), g.Width())
	z0, z1 := clampSpan(int64(src.Z)-int64(radius), int64(src.Z)+int64(radius), g.Height())

	marked := 0
	for z := z0; z <= z1; z++ {
		for x := x0; x <= x1; x++ {
			if x == src.X && z == src.Z {
				continue
			}
			agents := g.Get(x, z, false).AgentCount
			g.SetTarget(x, z, src, pheromone.Now)
			if agents > 0 {
				g.ChangeAgentCount(x, z, agents)
			}
			marked++
		}
	}
	return marked, nil
}

func clampSpan(lo, hi int64, size int) (int32, int32) {
	if lo < 0 {
		lo = 0
	}
	if hi > int64(size-1) {
		hi = int64(size - 1)
	}
	return int32(lo), int32(hi)
}
