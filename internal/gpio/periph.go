package gpio

import (
	"fmt"

	"go.uber.org/multierr"
	periphgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphOutput adapts a periph.io output pin to a chain line.
type PeriphOutput struct {
	Pin periphgpio.PinOut
}

// SetHigh drives the pin high.
func (p PeriphOutput) SetHigh() error { return p.Pin.Out(periphgpio.High) }

// SetLow drives the pin low.
func (p PeriphOutput) SetLow() error { return p.Pin.Out(periphgpio.Low) }

// PeriphInput adapts a periph.io input pin to a chain line.
type PeriphInput struct {
	Pin periphgpio.PinIn
}

// IsHigh samples the pin.
func (p PeriphInput) IsHigh() (bool, error) {
	return p.Pin.Read() == periphgpio.High, nil
}

// openPeriph looks the lines up in periph's registry after initialising the
// host drivers.
func openPeriph(cfg Config) (*Lines, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	var pins []periphgpio.PinIO
	byName := func(role, name string) (periphgpio.PinIO, error) {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("%s pin %q not found", role, name)
		}
		pins = append(pins, p)
		return p, nil
	}
	output := func(role, name string) (PeriphOutput, error) {
		p, err := byName(role, name)
		if err != nil {
			return PeriphOutput{}, err
		}
		if err := p.Out(periphgpio.Low); err != nil {
			return PeriphOutput{}, fmt.Errorf("%s pin %s as output: %w", role, name, err)
		}
		return PeriphOutput{Pin: p}, nil
	}

	lines := &Lines{}
	clk, err := output("clock", cfg.Clock)
	if err != nil {
		return nil, err
	}
	lines.Clock = clk

	lat, err := output("latch", cfg.Latch)
	if err != nil {
		return nil, err
	}
	lines.Latch = lat
	if cfg.LatchActiveLow {
		lines.Latch = activeLow{lat}
		if err := lines.Latch.SetLow(); err != nil {
			return nil, fmt.Errorf("latch idle: %w", err)
		}
	}

	if cfg.DataIn != "" {
		p, err := byName("data in", cfg.DataIn)
		if err != nil {
			return nil, err
		}
		if err := p.In(periphgpio.PullNoChange, periphgpio.NoEdge); err != nil {
			return nil, fmt.Errorf("data in pin %s as input: %w", cfg.DataIn, err)
		}
		lines.DataIn = PeriphInput{Pin: p}
	}
	if cfg.DataOut != "" {
		dout, err := output("data out", cfg.DataOut)
		if err != nil {
			return nil, err
		}
		lines.DataOut = dout
	}

	lines.close = func() error {
		var err error
		for _, p := range pins {
			err = multierr.Append(err, p.Halt())
		}
		return err
	}
	return lines, nil
}
