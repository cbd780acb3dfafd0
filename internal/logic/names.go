package logic

import (
	"fmt"
	"strconv"
	"strings"
)

// Names labels the pins of one side of a chain. Names[i] is the label of
// pin i.
type Names []string

// NewNames returns default labels prefix0, prefix1, ... for bits pins.
func NewNames(prefix string, bits int) Names {
	n := make(Names, bits)
	for i := range n {
		n[i] = prefix + strconv.Itoa(i)
	}
	return n
}

// Name returns the label of pin i.
func (n Names) Name(i int) string {
	if i < 0 || i >= len(n) {
		return ""
	}
	return n[i]
}

// Resolve maps a pin reference, either a label or a decimal index, to an
// index.
func (n Names) Resolve(ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	for i, name := range n {
		if name == ref {
			return i, nil
		}
	}
	i, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPin, ref)
	}
	if i < 0 || i >= len(n) {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrUnknownPin, i, len(n))
	}
	return i, nil
}

// ParseNames applies idx=name overrides to the default labels.
func ParseNames(prefix string, bits int, overrides []string) (Names, error) {
	n := NewNames(prefix, bits)
	for _, o := range overrides {
		idx, name, ok := strings.Cut(o, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("pin name %q: want index=name", o)
		}
		i, err := strconv.Atoi(strings.TrimSpace(idx))
		if err != nil || i < 0 || i >= bits {
			return nil, fmt.Errorf("pin name %q: index not in [0, %d)", o, bits)
		}
		n[i] = name
	}
	seen := make(map[string]int, len(n))
	for i, name := range n {
		if j, dup := seen[name]; dup {
			return nil, fmt.Errorf("pin name %q used by pins %d and %d", name, j, i)
		}
		seen[name] = i
	}
	return n, nil
}
