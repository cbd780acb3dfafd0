// Package bank presents one shift register chain as an indexed set of input
// and output pins, built from the chain's pin handles.
package bank

import (
	"errors"
	"fmt"

	"github.com/sweeney/shiftio/internal/gpio"
	"github.com/sweeney/shiftio/internal/shiftreg"
)

// Mode selects which sides of a chain are present.
type Mode string

const (
	ModeIn   Mode = "in"
	ModeOut  Mode = "out"
	ModeDual Mode = "dual"
)

// ErrReadOnly is returned when writing to a chain without outputs.
var ErrReadOnly = errors.New("bank: chain has no outputs")

// ParseMode converts a flag value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeIn, ModeOut, ModeDual:
		return m, nil
	}
	return "", fmt.Errorf("bank: unknown mode %q (want in, out or dual)", s)
}

// HasInputs reports whether the mode reads inputs.
func (m Mode) HasInputs() bool { return m == ModeIn || m == ModeDual }

// HasOutputs reports whether the mode drives outputs.
func (m Mode) HasOutputs() bool { return m == ModeOut || m == ModeDual }

type inputPin interface {
	Read() bool
}

type outputPin interface {
	Set(level bool)
	Level() bool
}

// Bank is a chain plus one handle per pin. It is not safe for concurrent
// use.
type Bank struct {
	mode    Mode
	chips   int
	update  func() error
	inputs  []inputPin
	outputs []outputPin
}

// New builds the chain for mode on lines.
func New(mode Mode, chips int, lines *gpio.Lines, opts ...shiftreg.Option) (*Bank, error) {
	b := &Bank{mode: mode, chips: chips}

	switch mode {
	case ModeIn:
		c, err := shiftreg.NewInputChain(chips, lines.Clock, lines.Latch, lines.DataIn, opts...)
		if err != nil {
			return nil, err
		}
		shared := shiftreg.Share(c)
		b.update = func() error { return shiftreg.Update(shared) }
		if b.inputs, err = inputPins(shared, c.Bits()); err != nil {
			return nil, err
		}
	case ModeOut:
		c, err := shiftreg.NewOutputChain(chips, lines.Clock, lines.Latch, lines.DataOut, opts...)
		if err != nil {
			return nil, err
		}
		shared := shiftreg.Share(c)
		b.update = func() error { return shiftreg.Update(shared) }
		if b.outputs, err = outputPins(shared, c.Bits()); err != nil {
			return nil, err
		}
	case ModeDual:
		c, err := shiftreg.NewDualChain(chips, lines.Clock, lines.Latch, lines.DataIn, lines.DataOut, opts...)
		if err != nil {
			return nil, err
		}
		shared := shiftreg.Share(c)
		b.update = func() error { return shiftreg.Update(shared) }
		if b.inputs, err = inputPins(shared, c.Bits()); err != nil {
			return nil, err
		}
		if b.outputs, err = outputPins(shared, c.Bits()); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("bank: unknown mode %q", mode)
	}
	return b, nil
}

func inputPins[C shiftreg.Inputs](s *shiftreg.Shared[C], bits int) ([]inputPin, error) {
	pins := make([]inputPin, bits)
	for i := range pins {
		p, err := shiftreg.NewInputPin(s, i)
		if err != nil {
			return nil, err
		}
		pins[i] = p
	}
	return pins, nil
}

func outputPins[C shiftreg.Outputs](s *shiftreg.Shared[C], bits int) ([]outputPin, error) {
	pins := make([]outputPin, bits)
	for i := range pins {
		p, err := shiftreg.NewOutputPin(s, i)
		if err != nil {
			return nil, err
		}
		pins[i] = p
	}
	return pins, nil
}

// Mode returns the chain mode.
func (b *Bank) Mode() Mode { return b.mode }

// Chips returns the chain length.
func (b *Bank) Chips() int { return b.chips }

// Bits returns the number of pins per side.
func (b *Bank) Bits() int { return b.chips * 8 }

// Update runs one transfer over the wire.
func (b *Bank) Update() error { return b.update() }

// Inputs returns the input levels captured by the last Update, or nil for
// an output-only chain.
func (b *Bank) Inputs() []bool {
	if b.inputs == nil {
		return nil
	}
	out := make([]bool, len(b.inputs))
	for i, p := range b.inputs {
		out[i] = p.Read()
	}
	return out
}

// Outputs returns the buffered output levels, or nil for an input-only
// chain.
func (b *Bank) Outputs() []bool {
	if b.outputs == nil {
		return nil
	}
	out := make([]bool, len(b.outputs))
	for i, p := range b.outputs {
		out[i] = p.Level()
	}
	return out
}

// Set buffers level for output index. It is committed by the next Update.
func (b *Bank) Set(index int, level bool) error {
	if b.outputs == nil {
		return ErrReadOnly
	}
	if index < 0 || index >= len(b.outputs) {
		return fmt.Errorf("%w: %d not in [0, %d)", shiftreg.ErrIndexOutOfRange, index, len(b.outputs))
	}
	b.outputs[index].Set(level)
	return nil
}
