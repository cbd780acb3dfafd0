package gpio

import "errors"

// Event is one recorded line operation.
type Event struct {
	Line  string
	Level bool
	// Read is true for a sample of an input line.
	Read bool
}

// Recorder collects the operations of every fake line attached to it, in
// the order they happened.
type Recorder struct {
	Events []Event
}

func (r *Recorder) record(e Event) {
	if r != nil {
		r.Events = append(r.Events, e)
	}
}

// Rising counts low to high transitions recorded for line.
func (r *Recorder) Rising(line string) int {
	n := 0
	level := false
	for _, e := range r.Events {
		if e.Line != line || e.Read {
			continue
		}
		if e.Level && !level {
			n++
		}
		level = e.Level
	}
	return n
}

// Reset forgets recorded events.
func (r *Recorder) Reset() {
	r.Events = nil
}

// FakeOutput is a test double for an output line.
type FakeOutput struct {
	Name string
	Rec  *Recorder

	// Level is the last driven level.
	Level bool

	// SetError, if set, is returned by SetHigh and SetLow.
	SetError error
}

// SetHigh records a high level.
func (f *FakeOutput) SetHigh() error { return f.set(true) }

// SetLow records a low level.
func (f *FakeOutput) SetLow() error { return f.set(false) }

func (f *FakeOutput) set(level bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Level = level
	f.Rec.record(Event{Line: f.Name, Level: level})
	return nil
}

// FakeInput is a test double for an input line that returns scripted
// levels.
type FakeInput struct {
	Name string
	Rec  *Recorder

	// Samples contains the levels to return. Each call to IsHigh consumes
	// the next one.
	Samples []bool

	index int

	// ReadError, if set, is returned by IsHigh.
	ReadError error
}

// NewFakeInput creates a FakeInput with the given samples.
func NewFakeInput(samples []bool) *FakeInput {
	return &FakeInput{Name: "data in", Samples: samples}
}

// IsHigh returns the next scripted level.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeInput) IsHigh() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}
	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}

	level := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	f.Rec.record(Event{Line: f.Name, Level: level, Read: true})
	return level, nil
}

// Reset rewinds to the first sample.
func (f *FakeInput) Reset() {
	f.index = 0
}

// NewFakeLines returns a full set of fake lines sharing rec. The data
// input returns samples.
func NewFakeLines(rec *Recorder, samples []bool) *Lines {
	in := NewFakeInput(samples)
	in.Rec = rec
	return &Lines{
		Clock:   &FakeOutput{Name: "clock", Rec: rec},
		Latch:   &FakeOutput{Name: "latch", Rec: rec},
		DataIn:  in,
		DataOut: &FakeOutput{Name: "data out", Rec: rec},
	}
}
