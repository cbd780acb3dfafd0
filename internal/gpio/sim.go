package gpio

import "sync"

// SimLine is a simulated output line. Registers attached to it react to its
// rising edges.
type SimLine struct {
	mu     sync.Mutex
	level  bool
	edges  int
	onRise []func()
}

// SetHigh drives the line high, firing rise handlers on a low to high edge.
func (l *SimLine) SetHigh() error {
	l.mu.Lock()
	rising := !l.level
	l.level = true
	var handlers []func()
	if rising {
		l.edges++
		handlers = append(handlers, l.onRise...)
	}
	l.mu.Unlock()

	for _, h := range handlers {
		h()
	}
	return nil
}

// SetLow drives the line low.
func (l *SimLine) SetLow() error {
	l.mu.Lock()
	l.level = false
	l.mu.Unlock()
	return nil
}

// Level returns the driven level.
func (l *SimLine) Level() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// RisingEdges returns the number of low to high transitions so far.
func (l *SimLine) RisingEdges() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.edges
}

func (l *SimLine) onRising(fn func()) {
	l.mu.Lock()
	l.onRise = append(l.onRise, fn)
	l.mu.Unlock()
}

// Sim595 simulates a cascade of serial-in, parallel-out registers. Stage i
// of the shift register drives output i after a latch.
type Sim595 struct {
	mu      sync.Mutex
	data    *SimLine
	stages  []bool
	outputs []bool
	latches int
}

// NewSim595 attaches a cascade of chips registers to the given lines.
func NewSim595(chips int, clock, latch, data *SimLine) *Sim595 {
	s := &Sim595{
		data:    data,
		stages:  make([]bool, chips*8),
		outputs: make([]bool, chips*8),
	}
	clock.onRising(s.shift)
	latch.onRising(s.store)
	return s
}

func (s *Sim595) shift() {
	level := s.data.Level()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.stages) == 0 {
		return
	}
	copy(s.stages[1:], s.stages[:len(s.stages)-1])
	s.stages[0] = level
}

func (s *Sim595) store() {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy(s.outputs, s.stages)
	s.latches++
}

// Outputs returns the latched output levels in pin order.
func (s *Sim595) Outputs() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]bool, len(s.outputs))
	copy(out, s.outputs)
	return out
}

// Latches returns how many times the outputs were updated.
func (s *Sim595) Latches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latches
}

// Sim165 simulates a cascade of parallel-in, serial-out registers. A latch
// captures the inputs; the serial output shows stage 0 and each clock moves
// the next stage into its place.
type Sim165 struct {
	mu     sync.Mutex
	inputs []bool
	stages []bool
}

// NewSim165 attaches a cascade of chips registers to the given lines.
func NewSim165(chips int, clock, latch *SimLine) *Sim165 {
	s := &Sim165{
		inputs: make([]bool, chips*8),
		stages: make([]bool, chips*8),
	}
	clock.onRising(s.shift)
	latch.onRising(s.capture)
	return s
}

func (s *Sim165) capture() {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy(s.stages, s.inputs)
}

func (s *Sim165) shift() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.stages) == 0 {
		return
	}
	copy(s.stages, s.stages[1:])
	s.stages[len(s.stages)-1] = false
}

// SetInput sets the level applied to parallel input index.
func (s *Sim165) SetInput(index int, level bool) {
	s.mu.Lock()
	s.inputs[index] = level
	s.mu.Unlock()
}

// SetInputs applies levels to the parallel inputs starting at index 0.
func (s *Sim165) SetInputs(levels []bool) {
	s.mu.Lock()
	copy(s.inputs, levels)
	s.mu.Unlock()
}

// IsHigh implements the serial data output.
func (s *Sim165) IsHigh() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.stages) == 0 {
		return false, nil
	}
	return s.stages[0], nil
}

// Sim is a simulated board: control lines plus the registers hanging off
// them.
type Sim struct {
	Clock   *SimLine
	Latch   *SimLine
	DataOut *SimLine
	In      *Sim165 // nil without an input side
	Out     *Sim595 // nil without an output side
}

// NewSim builds a simulated chain of chips registers per direction.
func NewSim(chips int, withInputs, withOutputs bool) *Sim {
	s := &Sim{
		Clock: &SimLine{},
		Latch: &SimLine{},
	}
	if withInputs {
		s.In = NewSim165(chips, s.Clock, s.Latch)
	}
	if withOutputs {
		s.DataOut = &SimLine{}
		s.Out = NewSim595(chips, s.Clock, s.Latch, s.DataOut)
	}
	return s
}

func openSim(cfg Config) *Lines {
	sim := NewSim(cfg.Chips, cfg.DataIn != "", cfg.DataOut != "")
	lines := &Lines{
		Clock: sim.Clock,
		Latch: sim.Latch,
		Sim:   sim,
	}
	if sim.In != nil {
		lines.DataIn = sim.In
	}
	if sim.Out != nil {
		lines.DataOut = sim.DataOut
	}
	return lines
}
