// Package status provides a thread-safe status tracker for the shiftio daemon.
// It is read by the HTTP handlers and by the MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/shiftio/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Backend      string
	Mode         string
	Chips        int
	PulseWidthUs int64
	PollMs       int64
	DebounceMs   int64
	HeartbeatMs  int64
	Broker       string
	TopicPrefix  string
	HTTPAddr     string
}

// Pin is the state of one input or output pin. An empty State means the
// input has no baseline yet.
type Pin struct {
	Index int
	Name  string
	State logic.State
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type: safe to use after the lock is released.
type Snapshot struct {
	Inputs        []Pin
	Outputs       []Pin
	Baselined     bool
	Counts        []logic.Counts
	Updates       int64
	Failures      int64
	LastError     string
	LastErrorTime time.Time
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config. The
// names fix the pins shown for each side; nil means the side is absent.
func NewTracker(startTime time.Time, cfg Config, inputs, outputs logic.Names) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Inputs:    newPins(inputs),
			Outputs:   newPins(outputs),
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

func newPins(names logic.Names) []Pin {
	if names == nil {
		return nil
	}
	pins := make([]Pin, len(names))
	for i, n := range names {
		pins[i] = Pin{Index: i, Name: n}
	}
	return pins
}

// Update sets debounced input states, output levels, baseline status and
// counts. Called from runLoop on every tick. Slices shorter than the pin
// list leave the remaining pins untouched.
func (t *Tracker) Update(inputs []logic.State, outputs []bool, baselined bool, counts []logic.Counts) {
	t.mu.Lock()
	for i := range t.snap.Inputs {
		if i < len(inputs) {
			t.snap.Inputs[i].State = inputs[i]
		}
	}
	for i := range t.snap.Outputs {
		if i < len(outputs) {
			t.snap.Outputs[i].State = logic.StateOf(outputs[i])
		}
	}
	t.snap.Baselined = baselined
	t.snap.Counts = append(t.snap.Counts[:0], counts...)
	t.mu.Unlock()
}

// RecordTransfer counts one chain update and remembers the last failure.
func (t *Tracker) RecordTransfer(err error, at time.Time) {
	t.mu.Lock()
	if err != nil {
		t.snap.Failures++
		t.snap.LastError = err.Error()
		t.snap.LastErrorTime = at
	} else {
		t.snap.Updates++
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Inputs = append([]Pin(nil), t.snap.Inputs...)
	s.Outputs = append([]Pin(nil), t.snap.Outputs...)
	s.Counts = append([]logic.Counts(nil), t.snap.Counts...)
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
