// Package machine contains the traffic-light state machine: the state
// table, the controller that drives it, and nothing else. This package
// has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable.
package machine

import "time"

// State identifies a lamp state. Each variant uses a small closed set.
type State string

const (
	StateIdle      State = "IDLE"
	StateRed       State = "RED"
	StateRedYellow State = "RED_YELLOW"
	StateGreen     State = "GREEN"
	StateYellow    State = "YELLOW"
)

// Pattern is the complete on/off assignment for all three lamps.
// Every state sets every lamp; there is no "leave as-is".
type Pattern struct {
	Red    bool
	Yellow bool
	Green  bool
}

// Dwell is the policy governing how long a state holds before
// advancing: a fixed positive duration, or indefinitely until an
// external trigger edge.
type Dwell struct {
	// Duration is the hold time for a timed state. Must be > 0 when
	// WaitForTrigger is false, and zero when it is true.
	Duration time.Duration
	// WaitForTrigger marks the state as advancing on a trigger edge
	// instead of a timer.
	WaitForTrigger bool
}

// Timed returns a fixed-duration dwell.
func Timed(d time.Duration) Dwell {
	return Dwell{Duration: d}
}

// WaitForTrigger is the dwell of a state that holds until a trigger
// edge arrives.
var WaitForTrigger = Dwell{WaitForTrigger: true}

// Row declares one state: its output pattern, its dwell policy, and
// its single successor.
type Row struct {
	Outputs Pattern
	Dwell   Dwell
	Next    State
}

// Transition reports one completed state change to an observer.
type Transition struct {
	Timestamp time.Time
	From      State
	To        State
	// Outputs is the pattern applied on entering To.
	Outputs Pattern
}
