package host

import "fmt"

// State is the lifecycle phase of the host loop.
type State int32

const (
	// Idle: no program loaded, only load and quit requests are serviced.
	Idle State = iota
	// Running: the machine is stepped and all timers advance.
	Running
	// Draining: quit was observed, save data is being flushed.
	Draining
	// Terminated: the loop has returned.
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}
