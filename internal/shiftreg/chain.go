package shiftreg

import "fmt"

// Updater is a chain that can run its transfer.
type Updater interface {
	Update() error
}

// Inputs is a chain whose buffer holds sampled input levels.
type Inputs interface {
	Updater
	Bits() int
	Input(index int) bool
}

// Outputs is a chain whose buffer holds levels to shift out.
type Outputs interface {
	Updater
	Bits() int
	Output(index int) bool
	SetOutput(index int, level bool)
}

func bitsFor(chips int) (int, error) {
	if chips < 0 {
		return 0, fmt.Errorf("%w: %d chips", ErrInvalidLength, chips)
	}
	return chips * 8, nil
}

type namedLine struct {
	name string
	line interface{}
}

func checkLines(lines ...namedLine) error {
	for _, l := range lines {
		if l.line == nil {
			return fmt.Errorf("%w: %s", ErrNilLine, l.name)
		}
	}
	return nil
}

// OutputChain is a cascade of SIPO registers (74HC595 and friends).
type OutputChain struct {
	clock  OutputLine
	latch  OutputLine
	data   OutputLine
	chips  int
	buf    *BitBuffer
	timing timing
}

// NewOutputChain returns an output chain of the given number of chips. All
// outputs start low in the buffer; the wire keeps the device's power-on
// state until the first Update.
func NewOutputChain(chips int, clock, latch, data OutputLine, opts ...Option) (*OutputChain, error) {
	bits, err := bitsFor(chips)
	if err != nil {
		return nil, err
	}
	if err := checkLines(namedLine{"clock", clock}, namedLine{"latch", latch}, namedLine{"data out", data}); err != nil {
		return nil, err
	}
	return &OutputChain{
		clock:  clock,
		latch:  latch,
		data:   data,
		chips:  chips,
		buf:    NewBitBuffer(bits),
		timing: newTiming(opts),
	}, nil
}

// Update shifts the buffer out and latches it. The outputs change once, at
// the latch pulse.
func (c *OutputChain) Update() error {
	if err := c.timing.shiftOut(c.clock, c.latch, c.data, c.buf); err != nil {
		return fmt.Errorf("output chain: %w", err)
	}
	return nil
}

// Len returns the number of chips.
func (c *OutputChain) Len() int { return c.chips }

// Bits returns the number of logical pins.
func (c *OutputChain) Bits() int { return c.buf.Len() }

// Output returns the buffered level of pin index.
func (c *OutputChain) Output(index int) bool { return c.buf.Get(index) }

// SetOutput buffers level for pin index. It reaches the wire at the next
// Update.
func (c *OutputChain) SetOutput(index int, level bool) { c.buf.Set(index, level) }

// SetOutputChecked is SetOutput with a range check.
func (c *OutputChain) SetOutputChecked(index int, level bool) error {
	if err := checkIndex(index, c.buf.Len()); err != nil {
		return err
	}
	c.buf.Set(index, level)
	return nil
}

// Buffer returns the chain's buffer.
func (c *OutputChain) Buffer() *BitBuffer { return c.buf }

// InputChain is a cascade of PISO registers (74HC165 and friends).
type InputChain struct {
	clock  OutputLine
	latch  OutputLine
	data   InputLine
	chips  int
	buf    *BitBuffer
	timing timing
}

// NewInputChain returns an input chain of the given number of chips. Every
// input reads low until the first Update.
func NewInputChain(chips int, clock, latch OutputLine, data InputLine, opts ...Option) (*InputChain, error) {
	bits, err := bitsFor(chips)
	if err != nil {
		return nil, err
	}
	if err := checkLines(namedLine{"clock", clock}, namedLine{"latch", latch}, namedLine{"data in", data}); err != nil {
		return nil, err
	}
	return &InputChain{
		clock:  clock,
		latch:  latch,
		data:   data,
		chips:  chips,
		buf:    NewBitBuffer(bits),
		timing: newTiming(opts),
	}, nil
}

// Update latches the inputs and shifts them into the buffer. On a line
// error the buffer may hold a mix of old and new levels.
func (c *InputChain) Update() error {
	if err := c.timing.shiftIn(c.clock, c.latch, c.data, c.buf); err != nil {
		return fmt.Errorf("input chain: %w", err)
	}
	return nil
}

// Len returns the number of chips.
func (c *InputChain) Len() int { return c.chips }

// Bits returns the number of logical pins.
func (c *InputChain) Bits() int { return c.buf.Len() }

// Input returns the level of pin index as of the last Update.
func (c *InputChain) Input(index int) bool { return c.buf.Get(index) }

// InputChecked is Input with a range check.
func (c *InputChain) InputChecked(index int) (bool, error) {
	if err := checkIndex(index, c.buf.Len()); err != nil {
		return false, err
	}
	return c.buf.Get(index), nil
}

// Buffer returns the chain's buffer.
func (c *InputChain) Buffer() *BitBuffer { return c.buf }

// DualChain runs an input cascade and an output cascade of equal length
// over one clock line and one latch line.
//
// Update does the input pass first and the output pass second, never
// interleaved. Inputs therefore show the world as it was before this
// Update changed any output.
type DualChain struct {
	clock   OutputLine
	latch   OutputLine
	dataIn  InputLine
	dataOut OutputLine
	chips   int
	in      *BitBuffer
	out     *BitBuffer
	timing  timing
}

// NewDualChain returns a dual chain with chips registers in each direction.
func NewDualChain(chips int, clock, latch OutputLine, dataIn InputLine, dataOut OutputLine, opts ...Option) (*DualChain, error) {
	bits, err := bitsFor(chips)
	if err != nil {
		return nil, err
	}
	if err := checkLines(namedLine{"clock", clock}, namedLine{"latch", latch}, namedLine{"data in", dataIn}, namedLine{"data out", dataOut}); err != nil {
		return nil, err
	}
	return &DualChain{
		clock:   clock,
		latch:   latch,
		dataIn:  dataIn,
		dataOut: dataOut,
		chips:   chips,
		in:      NewBitBuffer(bits),
		out:     NewBitBuffer(bits),
		timing:  newTiming(opts),
	}, nil
}

// Update reads the inputs, then writes and latches the outputs. If the
// input pass fails the outputs are left untouched.
func (c *DualChain) Update() error {
	if err := c.timing.shiftIn(c.clock, c.latch, c.dataIn, c.in); err != nil {
		return fmt.Errorf("dual chain input pass: %w", err)
	}
	if err := c.timing.shiftOut(c.clock, c.latch, c.dataOut, c.out); err != nil {
		return fmt.Errorf("dual chain output pass: %w", err)
	}
	return nil
}

// Len returns the number of chips per direction.
func (c *DualChain) Len() int { return c.chips }

// Bits returns the number of logical pins per direction.
func (c *DualChain) Bits() int { return c.in.Len() }

// Input returns the level of input pin index as of the last Update.
func (c *DualChain) Input(index int) bool { return c.in.Get(index) }

// InputChecked is Input with a range check.
func (c *DualChain) InputChecked(index int) (bool, error) {
	if err := checkIndex(index, c.in.Len()); err != nil {
		return false, err
	}
	return c.in.Get(index), nil
}

// Output returns the buffered level of output pin index.
func (c *DualChain) Output(index int) bool { return c.out.Get(index) }

// SetOutput buffers level for output pin index.
func (c *DualChain) SetOutput(index int, level bool) { c.out.Set(index, level) }

// SetOutputChecked is SetOutput with a range check.
func (c *DualChain) SetOutputChecked(index int, level bool) error {
	if err := checkIndex(index, c.out.Len()); err != nil {
		return err
	}
	c.out.Set(index, level)
	return nil
}

// InputBuffer returns the buffer filled by the input pass.
func (c *DualChain) InputBuffer() *BitBuffer { return c.in }

// OutputBuffer returns the buffer drained by the output pass.
func (c *DualChain) OutputBuffer() *BitBuffer { return c.out }

var (
	_ Outputs = (*OutputChain)(nil)
	_ Inputs  = (*InputChain)(nil)
	_ Inputs  = (*DualChain)(nil)
	_ Outputs = (*DualChain)(nil)
)
