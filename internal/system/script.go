package system

import (
	"time"

	coresys "github.com/l1jgo/pheromone/internal/core/system"
	"github.com/l1jgo/pheromone/internal/scripting"
	"github.com/l1jgo/pheromone/internal/world"
	"go.uber.org/zap"
)

// ScriptSystem runs the Lua on_tick hook once per tick. Phase 1 (Update).
type ScriptSystem struct {
	engine *scripting.Engine
	clock  *world.TickClock
	log    *zap.Logger
}

func NewScriptSystem(engine *scripting.Engine, clock *world.TickClock, log *zap.Logger) *ScriptSystem {
	return &ScriptSystem{engine: engine, clock: clock, log: log}
}

func (s *ScriptSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ScriptSystem) Update(_ time.Duration) {
	if err := s.engine.OnTick(s.clock.Tick()); err != nil {
		s.log.Error("script tick failed", zap.Int64("tick", s.clock.Tick()), zap.Error(err))
	}
}
