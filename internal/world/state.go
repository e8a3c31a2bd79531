package world

import (
	"errors"
	"fmt"
	"sort"

	"github.com/l1jgo/pheromone/internal/core/handle"
	"github.com/l1jgo/pheromone/internal/pheromone"
)

var (
	ErrUnknownMap   = errors.New("unknown map")
	ErrMapExists    = errors.New("map already registered")
	ErrUnknownAgent = errors.New("unknown agent")
)

// AgentInfo is an agent currently walking a map.
type AgentInfo struct {
	ID        handle.ID
	MapID     int16
	Pos       pheromone.Vec2
	SpawnTick int64
	MoveTick  int64 // tick of the last accepted move (0 = never moved)
	Moves     int
}

// State owns the pheromone grid of every loaded map and the agents on them.
// Accessed only from the tick goroutine, so it holds no locks.
type State struct {
	clock  *TickClock
	grids  map[int16]*pheromone.Grid
	agents map[handle.ID]*AgentInfo
	ids    *handle.Pool
}

func NewState(clock *TickClock) *State {
	return &State{
		clock:  clock,
		grids:  make(map[int16]*pheromone.Grid),
		agents: make(map[handle.ID]*AgentInfo),
		ids:    handle.NewPool(),
	}
}

func (s *State) Clock() *TickClock { return s.clock }

// AddMap creates the grid for a map. Called once per map at boot.
func (s *State) AddMap(mapID int16, width, height int) (*pheromone.Grid, error) {
	if _, ok := s.grids[mapID]; ok {
		return nil, fmt.Errorf("add map %d: %w", mapID, ErrMapExists)
	}
	g, err := pheromone.NewGrid(width, height, s.clock)
	if err != nil {
		return nil, fmt.Errorf("add map %d: %w", mapID, err)
	}
	s.grids[mapID] = g
	return g, nil
}

// Grid returns the grid for a map, or nil if not loaded.
func (s *State) Grid(mapID int16) *pheromone.Grid {
	return s.grids[mapID]
}

// ReplaceGrid swaps in a fresh empty grid for a map, keeping its size.
// Agents on the map are re-counted into the new grid.
func (s *State) ReplaceGrid(mapID int16) error {
	old := s.grids[mapID]
	if old == nil {
		return fmt.Errorf("replace grid %d: %w", mapID, ErrUnknownMap)
	}
	g, err := pheromone.NewGrid(old.Width(), old.Height(), s.clock)
	if err != nil {
		return fmt.Errorf("replace grid %d: %w", mapID, err)
	}
	s.grids[mapID] = g
	s.countAgents(mapID, g)
	return nil
}

// RecountAgents rebuilds a map's cell agent counts from the agents alive
// in the world. Trails and timestamps are kept. Counts loaded from a
// snapshot describe agents that no longer exist, so this runs after every
// restore.
func (s *State) RecountAgents(mapID int16) error {
	g := s.grids[mapID]
	if g == nil {
		return fmt.Errorf("recount agents %d: %w", mapID, ErrUnknownMap)
	}
	type counted struct {
		x, z int32
		n    int32
	}
	var stale []counted
	g.IterateCells(func(x, z int32, p pheromone.Pheromone) {
		if p.AgentCount > 0 {
			stale = append(stale, counted{x, z, p.AgentCount})
		}
	})
	for _, c := range stale {
		g.ChangeAgentCount(c.x, c.z, -c.n)
	}
	s.countAgents(mapID, g)
	return nil
}

func (s *State) countAgents(mapID int16, g *pheromone.Grid) {
	for _, a := range s.agents {
		if a.MapID == mapID {
			g.ChangeAgentCount(a.Pos.X, a.Pos.Z, 1)
		}
	}
}

// Maps returns the loaded map IDs in ascending order.
func (s *State) Maps() []int16 {
	ids := make([]int16, 0, len(s.grids))
	for id := range s.grids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SpawnAgent places a new agent and counts it into its cell.
func (s *State) SpawnAgent(mapID int16, pos pheromone.Vec2) (handle.ID, error) {
	g := s.grids[mapID]
	if g == nil {
		return 0, fmt.Errorf("spawn agent on map %d: %w", mapID, ErrUnknownMap)
	}
	id := s.ids.Acquire()
	s.agents[id] = &AgentInfo{
		ID:        id,
		MapID:     mapID,
		Pos:       pos,
		SpawnTick: s.clock.Tick(),
	}
	g.ChangeAgentCount(pos.X, pos.Z, 1)
	g.SetTimestamp(pos.X, pos.Z, pheromone.Now)
	return id, nil
}

// MoveAgent walks an agent to a new cell. The cell it leaves keeps a trail
// pointing at the destination, stamped with the current tick.
func (s *State) MoveAgent(id handle.ID, to pheromone.Vec2) error {
	a := s.agents[id]
	if a == nil {
		return fmt.Errorf("move agent %s: %w", id, ErrUnknownAgent)
	}
	if a.Pos == to {
		return nil
	}
	g := s.grids[a.MapID]
	from := a.Pos

	g.ChangeAgentCount(from.X, from.Z, -1)
	if g.InBounds(from.X, from.Z) {
		// SetTarget resets the count; carry the agents still standing here.
		remaining := g.Get(from.X, from.Z, false).AgentCount
		g.SetTarget(from.X, from.Z, to, pheromone.Now)
		if remaining > 0 {
			g.ChangeAgentCount(from.X, from.Z, remaining)
		}
	}
	g.ChangeAgentCount(to.X, to.Z, 1)
	g.SetTimestamp(to.X, to.Z, pheromone.Now)

	a.Pos = to
	a.MoveTick = s.clock.Tick()
	a.Moves++
	return nil
}

// RemoveAgent takes an agent out of the world and its cell count.
func (s *State) RemoveAgent(id handle.ID) (*AgentInfo, error) {
	a := s.agents[id]
	if a == nil {
		return nil, fmt.Errorf("remove agent %s: %w", id, ErrUnknownAgent)
	}
	delete(s.agents, id)
	s.ids.Release(id)
	s.grids[a.MapID].ChangeAgentCount(a.Pos.X, a.Pos.Z, -1)
	return a, nil
}

// Agent returns an agent, or nil if it is gone.
func (s *State) Agent(id handle.ID) *AgentInfo {
	return s.agents[id]
}

func (s *State) AgentCount() int {
	return len(s.agents)
}

// AllAgents calls fn for each agent. fn must not spawn or remove agents.
func (s *State) AllAgents(fn func(*AgentInfo)) {
	for _, a := range s.agents {
		fn(a)
	}
}
