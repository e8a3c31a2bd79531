package world

// TickClock is the simulation tick counter. It only moves forward.
type TickClock struct {
	tick int64
}

func NewTickClock(start int64) *TickClock {
	if start < 0 {
		start = 0
	}
	return &TickClock{tick: start}
}

// Tick implements pheromone.Clock.
func (c *TickClock) Tick() int64 { return c.tick }

// Advance moves the clock one tick forward and returns the new tick.
func (c *TickClock) Advance() int64 {
	c.tick++
	return c.tick
}

// Set fast-forwards the clock, e.g. to the tick of a restored snapshot.
// Earlier ticks are ignored.
func (c *TickClock) Set(tick int64) {
	if tick > c.tick {
		c.tick = tick
	}
}
