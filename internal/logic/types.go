// Package logic contains the pure pin logic: debouncing sampled inputs into
// transitions, heartbeat timing, pin naming and output command parsing.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// State represents the logical state of a pin.
type State string

const (
	StateOn  State = "ON"
	StateOff State = "OFF"
)

// StateOf converts a level into a State.
func StateOf(level bool) State {
	if level {
		return StateOn
	}
	return StateOff
}

// Level reports whether s is ON.
func (s State) Level() bool {
	return s == StateOn
}

// Event represents a debounced input transition to be published.
type Event struct {
	Timestamp time.Time
	Pin       int
	Name      string
	State     State
}

// ChannelState tracks debounce state for a single input pin.
type ChannelState struct {
	// Current stable (debounced) state
	Stable State
	// Pending state during debounce
	Pending State
	// Time when pending state was first observed
	PendingSince time.Time
	// Whether we have established a baseline
	Baselined bool
}

// Input represents one sample of every input pin.
type Input struct {
	Levels []bool
	Time   time.Time
}

// Counts tracks the transitions of one pin since startup.
type Counts struct {
	On  int
	Off int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    []Counts
}
