package system

import "time"

// Phase orders systems within one tick.
type Phase int

const (
	PhaseInput   Phase = iota // 0: advance clock, deliver last tick's requests
	PhaseUpdate               // 1: scripts, agent movement
	PhasePersist              // 2: periodic grid snapshots
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseUpdate:
		return "update"
	case PhasePersist:
		return "persist"
	}
	return "unknown"
}

// System is one step of the tick pipeline.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
