package shiftreg

import (
	"errors"
	"fmt"
)

// wire records every transition and sample across a set of fake lines.
type wire struct {
	events  []string
	samples []bool
	next    int
	failOn  string
	failErr error
}

type fakeOut struct {
	w    *wire
	name string
}

func (l fakeOut) SetHigh() error { return l.w.record(l.name + "+") }
func (l fakeOut) SetLow() error  { return l.w.record(l.name + "-") }

type fakeIn struct {
	w *wire
}

func (l fakeIn) IsHigh() (bool, error) {
	if err := l.w.record("din?"); err != nil {
		return false, err
	}
	if l.w.next >= len(l.w.samples) {
		return false, nil
	}
	v := l.w.samples[l.w.next]
	l.w.next++
	return v, nil
}

var errLine = errors.New("line fault")

func (w *wire) record(ev string) error {
	if w.failOn != "" && ev == w.failOn {
		return w.failErr
	}
	w.events = append(w.events, ev)
	return nil
}

func (w *wire) count(ev string) int {
	n := 0
	for _, e := range w.events {
		if e == ev {
			n++
		}
	}
	return n
}

// shiftedOut returns the data-out level present at each rising clock edge.
func (w *wire) shiftedOut() []bool {
	var data bool
	var out []bool
	for _, e := range w.events {
		switch e {
		case "dout+":
			data = true
		case "dout-":
			data = false
		case "clk+":
			out = append(out, data)
		}
	}
	return out
}

func (w *wire) reset() {
	w.events = nil
	w.next = 0
}

func newWire() (*wire, fakeOut, fakeOut, fakeIn, fakeOut) {
	w := &wire{}
	return w, fakeOut{w, "clk"}, fakeOut{w, "lat"}, fakeIn{w}, fakeOut{w, "dout"}
}

func levels(s string) []bool {
	out := make([]bool, 0, len(s))
	for _, c := range s {
		switch c {
		case '1':
			out = append(out, true)
		case '0':
			out = append(out, false)
		case ' ':
		default:
			panic(fmt.Sprintf("bad level %q", c))
		}
	}
	return out
}
