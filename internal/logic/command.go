package logic

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnknownPin is returned for a pin reference that names no pin.
	ErrUnknownPin = errors.New("unknown pin")
	// ErrBadState is returned for an unrecognised state value.
	ErrBadState = errors.New("bad state")
)

// Command requests a new level for one output pin.
type Command struct {
	Pin   int
	State State
}

// ParseState accepts ON/OFF, 1/0, true/false and high/low, in any case.
func ParseState(s string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "1", "true", "high":
		return StateOn, nil
	case "off", "0", "false", "low":
		return StateOff, nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadState, s)
}

// NewCommand resolves a pin reference and a state value.
func NewCommand(ref, state string, names Names) (Command, error) {
	pin, err := names.Resolve(ref)
	if err != nil {
		return Command{}, err
	}
	st, err := ParseState(state)
	if err != nil {
		return Command{}, err
	}
	return Command{Pin: pin, State: st}, nil
}

// ParseCommand parses the text form "pin=state".
func ParseCommand(s string, names Names) (Command, error) {
	ref, state, ok := strings.Cut(s, "=")
	if !ok {
		return Command{}, fmt.Errorf("command %q: want pin=state", s)
	}
	return NewCommand(ref, state, names)
}

// commandJSON is the JSON form {"pin": "pump", "state": "ON"}. The pin may
// also be a number.
type commandJSON struct {
	Pin   json.RawMessage `json:"pin"`
	State string          `json:"state"`
}

// DecodeCommand parses a command payload in either the JSON or the text
// form.
func DecodeCommand(payload []byte, names Names) (Command, error) {
	trimmed := strings.TrimSpace(string(payload))
	if !strings.HasPrefix(trimmed, "{") {
		return ParseCommand(trimmed, names)
	}

	var c commandJSON
	if err := json.Unmarshal([]byte(trimmed), &c); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	if len(c.Pin) == 0 {
		return Command{}, fmt.Errorf("decode command: missing pin")
	}
	var ref string
	if err := json.Unmarshal(c.Pin, &ref); err != nil {
		var idx int
		if err := json.Unmarshal(c.Pin, &idx); err != nil {
			return Command{}, fmt.Errorf("decode command: pin must be a name or an index")
		}
		ref = strconv.Itoa(idx)
	}
	return NewCommand(ref, c.State, names)
}
