package logic

import "time"

// Detector tracks the inputs of a chain and detects debounced transitions.
type Detector struct {
	debounceDuration time.Duration
	names            Names
	pins             []ChannelState
	baselined        bool
	startTime        time.Time
	counts           []Counts
	lastHeartbeat    time.Time
}

// NewDetector creates a transition detector for one input per name.
// The startTime is used for calculating uptime in heartbeat events.
func NewDetector(debounceDuration time.Duration, names Names, startTime time.Time) *Detector {
	return &Detector{
		debounceDuration: debounceDuration,
		names:            names,
		pins:             make([]ChannelState, len(names)),
		startTime:        startTime,
		counts:           make([]Counts, len(names)),
		lastHeartbeat:    startTime,
	}
}

// Process takes a new input sample and returns any events that should be emitted.
// Events are only returned after every pin has a baseline, in pin order.
// Samples with the wrong number of levels are ignored.
func (d *Detector) Process(input Input) []Event {
	if len(input.Levels) != len(d.pins) {
		return nil
	}

	changed := make([]bool, len(d.pins))
	for i := range d.pins {
		changed[i] = d.processChannel(&d.pins[i], StateOf(input.Levels[i]), input.Time)
	}

	if !d.baselined {
		for i := range d.pins {
			if !d.pins[i].Baselined {
				return nil
			}
		}
		d.baselined = true
		return nil
	}

	var events []Event
	for i, c := range changed {
		if !c {
			continue
		}
		state := d.pins[i].Stable
		events = append(events, Event{
			Timestamp: input.Time,
			Pin:       i,
			Name:      d.names.Name(i),
			State:     state,
		})
		if state == StateOn {
			d.counts[i].On++
		} else {
			d.counts[i].Off++
		}
	}
	return events
}

// processChannel handles debounce logic for a single pin and reports
// whether its stable state changed.
func (d *Detector) processChannel(ch *ChannelState, newState State, now time.Time) bool {
	if !ch.Baselined {
		if ch.Pending != newState {
			// First sample, or state changed during baseline: restart
			ch.Pending = newState
			ch.PendingSince = now
			return false
		}
		if now.Sub(ch.PendingSince) >= d.debounceDuration {
			ch.Stable = newState
			ch.Baselined = true
			ch.Pending = ""
		}
		return false
	}

	if newState == ch.Stable {
		ch.Pending = ""
		return false
	}

	if ch.Pending != newState {
		ch.Pending = newState
		ch.PendingSince = now
		return false
	}

	if now.Sub(ch.PendingSince) >= d.debounceDuration {
		ch.Stable = newState
		ch.Pending = ""
		return true
	}
	return false
}

// IsBaselined returns whether the detector has established a baseline.
func (d *Detector) IsBaselined() bool {
	return d.baselined
}

// CurrentState returns the stable state of every pin. Pins without a
// baseline report an empty State.
func (d *Detector) CurrentState() []State {
	out := make([]State, len(d.pins))
	for i, p := range d.pins {
		out[i] = p.Stable
	}
	return out
}

// Counts returns a copy of the per-pin transition counts.
func (d *Detector) Counts() []Counts {
	return append([]Counts(nil), d.counts...)
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if not yet baselined, if the
// interval has not elapsed, or if interval is <= 0 (disabled).
// A detector without pins is always considered baselined.
func (d *Detector) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}
	if !d.baselined && len(d.pins) > 0 {
		return nil
	}
	if now.Sub(d.lastHeartbeat) < interval {
		return nil
	}

	d.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(d.startTime),
		Counts:    d.Counts(),
	}
}
