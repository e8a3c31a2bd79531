package system

import (
	"time"

	"github.com/l1jgo/pheromone/internal/core/event"
	coresys "github.com/l1jgo/pheromone/internal/core/system"
	"github.com/l1jgo/pheromone/internal/world"
	"go.uber.org/zap"
)

// TrailSystem applies queued agent and noise requests to the world, which
// in turn lays pheromone trails. Requests are collected during dispatch and
// applied in emit order. Phase 1 (Update).
type TrailSystem struct {
	world   *world.State
	log     *zap.Logger
	pending []any
}

func NewTrailSystem(ws *world.State, bus *event.Bus, log *zap.Logger) *TrailSystem {
	s := &TrailSystem{world: ws, log: log}
	event.Subscribe(bus, func(ev event.AgentMoveRequested) { s.pending = append(s.pending, ev) })
	event.Subscribe(bus, func(ev event.AgentRemoveRequested) { s.pending = append(s.pending, ev) })
	event.Subscribe(bus, func(ev event.NoiseRequested) { s.pending = append(s.pending, ev) })
	return s
}

func (s *TrailSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *TrailSystem) Update(_ time.Duration) {
	for _, req := range s.pending {
		var err error
		switch ev := req.(type) {
		case event.AgentMoveRequested:
			err = s.world.MoveAgent(ev.Agent, ev.To)
		case event.AgentRemoveRequested:
			_, err = s.world.RemoveAgent(ev.Agent)
		case event.NoiseRequested:
			_, err = s.world.EmitNoise(ev.MapID, ev.At, ev.Radius)
		}
		if err != nil {
			// agents may be despawned between request and apply
			s.log.Debug("trail request dropped", zap.Error(err))
		}
	}
	clear(s.pending)
	s.pending = s.pending[:0]
}
