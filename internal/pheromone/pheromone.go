// Package pheromone tracks a decaying per-cell signal over a fixed-size map.
// A Grid holds one lazily materialized Pheromone record per map cell; the
// record stores when the cell was last marked, how many agents are
// attributed to it, and an optional steering target.
//
// Accessed only from the simulation tick goroutine; nothing here locks.
package pheromone

// Vec2 is a horizontal grid coordinate. Z is the row axis.
type Vec2 struct {
	X int32
	Z int32
}

// Vec3 is a world coordinate. Y is vertical and ignored by the grid.
type Vec3 struct {
	X int32
	Y int32
	Z int32
}

// Flat drops the vertical component.
func (v Vec3) Flat() Vec2 { return Vec2{X: v.X, Z: v.Z} }

// Clock supplies the current simulation tick. Must be non-decreasing.
type Clock interface {
	Tick() int64
}

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() int64

func (f ClockFunc) Tick() int64 { return f() }

// Stamp selects the timestamp written by a mutator. The zero value (Now)
// reads the clock; At pins an explicit tick, zero included.
type Stamp struct {
	tick     int64
	explicit bool
}

// Now stamps a record with the clock's current tick.
var Now = Stamp{}

// At stamps a record with the given tick, even if it is 0.
func At(tick int64) Stamp { return Stamp{tick: tick, explicit: true} }

// Explicit reports the pinned tick, if any.
func (s Stamp) Explicit() (int64, bool) { return s.tick, s.explicit }

func (s Stamp) resolve(c Clock) int64 {
	if s.explicit {
		return s.tick
	}
	return c.Tick()
}

// Pheromone is the record stored in one grid cell.
type Pheromone struct {
	Target     Vec2  `json:"target"`
	HasTarget  bool  `json:"has_target"` // false = no target; Target is meaningless
	Timestamp  int64 `json:"timestamp"`  // tick of the last mark
	AgentCount int32 `json:"agent_count"`
}

// Empty is returned for out-of-bounds and unmaterialized reads.
// Records are handed out by value, so callers cannot corrupt it.
var Empty = Pheromone{}

// NewPheromone returns a record with no target, stamped per s.
func NewPheromone(c Clock, s Stamp) Pheromone {
	return Pheromone{Timestamp: s.resolve(c)}
}

// NewTargeted returns a record steering toward target, stamped per s.
func NewTargeted(target Vec2, c Clock, s Stamp) Pheromone {
	return Pheromone{Target: target, HasTarget: true, Timestamp: s.resolve(c)}
}

// Age returns how many ticks have passed since the record was stamped.
// Never negative.
func (p Pheromone) Age(now int64) int64 {
	if now < p.Timestamp {
		return 0
	}
	return now - p.Timestamp
}
