package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/sweeney/shiftio/internal/logic"
)

var ts = time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC)

func TestNewTopics(t *testing.T) {
	tests := []struct {
		prefix string
		want   Topics
	}{
		{"shiftio", Topics{"shiftio/events", "shiftio/system", "shiftio/set"}},
		{"home/garage/", Topics{"home/garage/events", "home/garage/system", "home/garage/set"}},
		{"", Topics{"shiftio/events", "shiftio/system", "shiftio/set"}},
	}
	for _, tt := range tests {
		if got := NewTopics(tt.prefix); got != tt.want {
			t.Errorf("NewTopics(%q): got %+v, want %+v", tt.prefix, got, tt.want)
		}
	}
}

func TestFormatPayload(t *testing.T) {
	event := logic.Event{Timestamp: ts, Pin: 3, Name: "door", State: logic.StateOn}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"input":{"timestamp":"2026-02-10T08:30:00Z","pin":3,"name":"door","state":"ON"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	event := logic.Event{Timestamp: time.Date(2026, 2, 10, 10, 30, 0, 0, loc), State: logic.StateOff}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Input.Timestamp != "2026-02-10T08:30:00Z" {
		t.Errorf("timestamp should be UTC, got %s", parsed.Input.Timestamp)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{Timestamp: ts, Event: EventShutdown, Reason: "SIGTERM"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := `{"system":{"timestamp":"2026-02-10T08:30:00Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatSystemPayloadOmitsReason(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{Timestamp: ts, Event: EventReconnected})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := `{"system":{"timestamp":"2026-02-10T08:30:00Z","event":"RECONNECTED"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"event":"STARTUP"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: EventStartup, RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("raw payload should be returned as is, got %s", payload)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()
	events := []logic.Event{
		{Timestamp: ts, Pin: 0, Name: "in0", State: logic.StateOn},
		{Timestamp: ts, Pin: 5, Name: "in5", State: logic.StateOff},
	}
	for _, e := range events {
		if err := f.Publish(e); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}

	if diff := cmp.Diff(events, f.Events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if len(f.Payloads) != 2 {
		t.Fatalf("expected 2 payloads, got %d", len(f.Payloads))
	}
	var parsed Payload
	if err := json.Unmarshal(f.Payloads[1], &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Input.Pin != 5 || parsed.Input.State != "OFF" {
		t.Errorf("payload: got %+v", parsed.Input)
	}
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("broker down")
	f.PublishSystemError = errors.New("broker down")

	if err := f.Publish(logic.Event{}); err == nil {
		t.Error("expected Publish error")
	}
	if err := f.PublishSystem(SystemEvent{Event: EventHeartbeat}); err == nil {
		t.Error("expected PublishSystem error")
	}
	if len(f.Events) != 0 || len(f.SystemEvents) != 0 {
		t.Error("failed publishes must not be recorded")
	}
}

func TestFakePublisherSystemEvents(t *testing.T) {
	f := NewFakePublisher()
	f.PublishSystem(SystemEvent{Timestamp: ts, Event: EventStartup, Retained: true})
	f.PublishSystem(SystemEvent{Timestamp: ts, Event: EventHeartbeat})

	if diff := cmp.Diff([]string{EventStartup, EventHeartbeat}, f.SystemEventNames()); diff != "" {
		t.Errorf("system events mismatch (-want +got):\n%s", diff)
	}
	if !f.SystemEvents[0].Retained || f.SystemEvents[1].Retained {
		t.Error("retained flag not recorded")
	}
	if len(f.SystemPayloads) != 2 {
		t.Errorf("expected 2 system payloads, got %d", len(f.SystemPayloads))
	}
}

func TestFakePublisherCloseAndReset(t *testing.T) {
	f := NewFakePublisher()
	f.Connected = true
	f.Publish(logic.Event{})
	f.PublishSystem(SystemEvent{Event: EventStartup})
	f.Close()

	if !f.Closed || !f.IsConnected() {
		t.Error("expected closed and connected")
	}

	f.Reset()
	if f.Closed || f.IsConnected() || f.Events != nil || f.SystemEvents != nil || f.Payloads != nil {
		t.Error("Reset should clear all state")
	}

	if err := f.Publish(logic.Event{Pin: 1}); err != nil || len(f.Events) != 1 {
		t.Error("publisher should be reusable after Reset")
	}
}
