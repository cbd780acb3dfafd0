// Package gpio provides the control lines a shift register chain is driven
// with. The real backends use the Linux GPIO character device or periph.io.
// The simulator and the fakes allow running and testing without hardware.
package gpio

import (
	"fmt"

	"github.com/sweeney/shiftio/internal/shiftreg"
)

// Backend names accepted by Open.
const (
	BackendGPIOCDev = "gpiocdev"
	BackendPeriph   = "periph"
	BackendSim      = "sim"
)

// Default lines (BCM numbering) and chip.
const (
	DefaultChip    = "gpiochip0"
	DefaultClock   = "11"
	DefaultLatch   = "8"
	DefaultDataIn  = "9"
	DefaultDataOut = "10"
)

// Config selects the lines of one chain.
type Config struct {
	// Chip is the gpiochip name or path. Only used by gpiocdev.
	Chip string
	// Clock, Latch, DataIn and DataOut identify lines: an offset or line
	// name for gpiocdev, a pin name for periph. An empty DataIn or DataOut
	// means the chain has no such side.
	Clock   string
	Latch   string
	DataIn  string
	DataOut string
	// LatchActiveLow inverts the latch line, for 74HC165 PL inputs.
	LatchActiveLow bool
	// Consumer labels requested lines in the kernel.
	Consumer string
	// Chips is the chain length, used to size the simulator.
	Chips int
}

// Lines is an opened set of control lines.
type Lines struct {
	Clock   shiftreg.OutputLine
	Latch   shiftreg.OutputLine
	DataIn  shiftreg.InputLine  // nil without an input side
	DataOut shiftreg.OutputLine // nil without an output side

	// Sim is set by the sim backend.
	Sim *Sim

	close func() error
}

// Close releases the lines.
func (l *Lines) Close() error {
	if l.close == nil {
		return nil
	}
	return l.close()
}

// Open opens the lines described by cfg with the named backend.
func Open(backend string, cfg Config) (*Lines, error) {
	if cfg.Clock == "" || cfg.Latch == "" {
		return nil, fmt.Errorf("gpio: clock and latch lines are required")
	}
	if cfg.DataIn == "" && cfg.DataOut == "" {
		return nil, fmt.Errorf("gpio: at least one data line is required")
	}
	switch backend {
	case BackendGPIOCDev:
		return openGPIOCDev(cfg)
	case BackendPeriph:
		return openPeriph(cfg)
	case BackendSim:
		return openSim(cfg), nil
	default:
		return nil, fmt.Errorf("gpio: unknown backend %q", backend)
	}
}

// activeLow swaps the sense of an output line.
type activeLow struct {
	shiftreg.OutputLine
}

func (l activeLow) SetHigh() error { return l.OutputLine.SetLow() }
func (l activeLow) SetLow() error  { return l.OutputLine.SetHigh() }
