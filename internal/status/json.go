package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Ready         bool         `json:"ready"`
	Inputs        []PinJSON    `json:"inputs,omitempty"`
	Outputs       []PinJSON    `json:"outputs,omitempty"`
	Updates       int64        `json:"updates"`
	Failures      int64        `json:"failures"`
	LastError     *ErrorJSON   `json:"last_error,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// PinJSON is the JSON representation of one pin. Counts are only set for
// inputs.
type PinJSON struct {
	Pin   int    `json:"pin"`
	Name  string `json:"name"`
	State string `json:"state"`
	On    *int   `json:"on_count,omitempty"`
	Off   *int   `json:"off_count,omitempty"`
}

// ErrorJSON reports the last failed chain update.
type ErrorJSON struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Backend      string `json:"backend"`
	Mode         string `json:"mode"`
	Chips        int    `json:"chips"`
	PulseWidthUs int64  `json:"pulse_width_us"`
	PollMs       int64  `json:"poll_ms"`
	DebounceMs   int64  `json:"debounce_ms"`
	HeartbeatMs  int64  `json:"heartbeat_ms"`
	Broker       string `json:"broker"`
	TopicPrefix  string `json:"topic_prefix"`
	HTTPAddr     string `json:"http_addr"`
}

// StateLabel returns the display form of a pin state.
func StateLabel(p Pin) string {
	if p.State == "" {
		return "UNKNOWN"
	}
	return string(p.State)
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Ready:         snap.Baselined,
		Updates:       snap.Updates,
		Failures:      snap.Failures,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			Backend:      snap.Config.Backend,
			Mode:         snap.Config.Mode,
			Chips:        snap.Config.Chips,
			PulseWidthUs: snap.Config.PulseWidthUs,
			PollMs:       snap.Config.PollMs,
			DebounceMs:   snap.Config.DebounceMs,
			HeartbeatMs:  snap.Config.HeartbeatMs,
			Broker:       snap.Config.Broker,
			TopicPrefix:  snap.Config.TopicPrefix,
			HTTPAddr:     snap.Config.HTTPAddr,
		},
	}

	for i, p := range snap.Inputs {
		pj := PinJSON{Pin: p.Index, Name: p.Name, State: StateLabel(p)}
		if i < len(snap.Counts) {
			on, off := snap.Counts[i].On, snap.Counts[i].Off
			pj.On, pj.Off = &on, &off
		}
		inner.Inputs = append(inner.Inputs, pj)
	}
	for _, p := range snap.Outputs {
		inner.Outputs = append(inner.Outputs, PinJSON{Pin: p.Index, Name: p.Name, State: StateLabel(p)})
	}
	if snap.LastError != "" {
		inner.LastError = &ErrorJSON{
			Message:   snap.LastError,
			Timestamp: snap.LastErrorTime.UTC().Format(time.RFC3339),
		}
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
