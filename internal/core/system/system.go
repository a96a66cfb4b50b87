package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: poll the anchor provider
	PhasePreUpdate               // 1: deliver last tick's events
	PhaseStream                  // 2: region load/unload pass, runs to completion
	PhaseUpdate                  // 3: agents query navigation and move
	PhasePostUpdate              // 4: navigation cache sweep
	PhaseCleanup                 // 5: destroy queued entities
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre_update"
	case PhaseStream:
		return "stream"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post_update"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
