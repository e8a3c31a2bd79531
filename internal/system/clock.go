package system

import (
	"time"

	"github.com/l1jgo/pheromone/internal/core/event"
	coresys "github.com/l1jgo/pheromone/internal/core/system"
	"github.com/l1jgo/pheromone/internal/world"
)

// ClockSystem starts every tick: it advances the simulation clock and
// delivers the requests queued during the previous tick. Phase 0 (Input).
type ClockSystem struct {
	clock *world.TickClock
	bus   *event.Bus
}

func NewClockSystem(clock *world.TickClock, bus *event.Bus) *ClockSystem {
	return &ClockSystem{clock: clock, bus: bus}
}

func (s *ClockSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *ClockSystem) Update(_ time.Duration) {
	s.clock.Advance()
	s.bus.Swap()
	s.bus.Dispatch()
}
