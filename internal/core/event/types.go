package event

import (
	"github.com/l1jgo/pheromone/internal/core/handle"
	"github.com/l1jgo/pheromone/internal/pheromone"
)

// AgentMoveRequested asks the world to walk an agent to a cell.
type AgentMoveRequested struct {
	Agent handle.ID
	To    pheromone.Vec2
}

// AgentRemoveRequested asks the world to despawn an agent.
type AgentRemoveRequested struct {
	Agent handle.ID
}

// NoiseRequested asks the world to pull nearby trails toward a point.
type NoiseRequested struct {
	MapID  int16
	At     pheromone.Vec2
	Radius int32
}
