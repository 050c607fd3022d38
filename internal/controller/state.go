// Package controller implements the controller-side state machine, command
// acceptance gates, safety monitor and telemetry emission (spec §3, §4.2,
// §4.4, C3/C4/C6). Its event loop services one unit of input, advances
// state, then waits, running against a real wall clock (spec §5).
package controller

import "fmt"

// State is one of the controller's lifecycle states (spec §3).
type State int

const (
	StateBoot State = iota
	StateIdle
	StateHoming
	StateReady
	StatePrinting
	StatePaused
	StateCleaning
	StateError
)

func (s State) String() string {
	switch s {
	case StateBoot:
		return "Boot"
	case StateIdle:
		return "Idle"
	case StateHoming:
		return "Homing"
	case StateReady:
		return "Ready"
	case StatePrinting:
		return "Printing"
	case StatePaused:
		return "Paused"
	case StateCleaning:
		return "Cleaning"
	case StateError:
		return "Error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// motionAllowed reports whether a motion command (G0/G1) other than Home is
// legal in state s (spec §3 invariant).
func (s State) motionAllowed() bool {
	return s == StateReady || s == StatePrinting
}

// flowOnAllowed reports whether FlowOn is legal in state s (spec §3
// invariant: rejected in Paused, Error, Homing, Idle).
func (s State) flowOnAllowed() bool {
	return s == StateReady || s == StatePrinting
}

// homeAllowed reports whether G28 is legal in state s (spec §4.2: "accepted
// in Idle, Ready, Paused"). Error is included too: spec §4.4/§7 both state
// that recovering from Error requires sending G28, which would be
// impossible if Error weren't also a homeAllowed state — see DESIGN.md.
func (s State) homeAllowed() bool {
	return s == StateIdle || s == StateReady || s == StatePaused || s == StateError
}

// homed reports whether the controller has completed a Home at some point,
// distinguishing "never homed" (NOT_HOMED) from "homed, but currently
// unable to accept motion for some other reason" (BUSY_STATE). Error
// counts as homed in this narrow sense: spec §8 scenario 4 sends a motion
// command in Error and accepts either NOT_HOMED or BUSY_STATE as the
// reply, and this repo reports BUSY_STATE there. Error counts as homed
// even when it was entered by a failed Home, so motion in Error always
// gets BUSY_STATE.
func (s State) homed() bool {
	return s == StateReady || s == StatePrinting || s == StatePaused || s == StateError
}
