//go:build linux

package gpio

import (
	"fmt"
	"strconv"

	"github.com/warthog618/go-gpiocdev"
	"go.uber.org/multierr"
)

type cdevOutput struct {
	line *gpiocdev.Line
	name string
}

func (o *cdevOutput) SetHigh() error {
	if err := o.line.SetValue(1); err != nil {
		return fmt.Errorf("set %s high: %w", o.name, err)
	}
	return nil
}

func (o *cdevOutput) SetLow() error {
	if err := o.line.SetValue(0); err != nil {
		return fmt.Errorf("set %s low: %w", o.name, err)
	}
	return nil
}

type cdevInput struct {
	line *gpiocdev.Line
	name string
}

func (i *cdevInput) IsHigh() (bool, error) {
	v, err := i.line.Value()
	if err != nil {
		return false, fmt.Errorf("read %s: %w", i.name, err)
	}
	return v != 0, nil
}

// openGPIOCDev requests the chain's lines from a Linux gpiochip.
func openGPIOCDev(cfg Config) (*Lines, error) {
	chipName := cfg.Chip
	if chipName == "" {
		chipName = DefaultChip
	}
	consumer := cfg.Consumer
	if consumer == "" {
		consumer = "shiftio"
	}

	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	var requested []*gpiocdev.Line
	fail := func(err error) (*Lines, error) {
		for _, l := range requested {
			l.Close()
		}
		chip.Close()
		return nil, err
	}
	request := func(name, id string, opts ...gpiocdev.LineReqOption) (*gpiocdev.Line, error) {
		offset, err := lineOffset(chip.Name, id)
		if err != nil {
			return nil, fmt.Errorf("%s line %q: %w", name, id, err)
		}
		l, err := chip.RequestLine(offset, opts...)
		if err != nil {
			return nil, fmt.Errorf("request %s line %d: %w", name, offset, err)
		}
		requested = append(requested, l)
		return l, nil
	}

	lines := &Lines{}

	clk, err := request("clock", cfg.Clock, gpiocdev.AsOutput(0))
	if err != nil {
		return fail(err)
	}
	lines.Clock = &cdevOutput{line: clk, name: "clock"}

	latchOpts := []gpiocdev.LineReqOption{gpiocdev.AsOutput(0)}
	if cfg.LatchActiveLow {
		latchOpts = append(latchOpts, gpiocdev.AsActiveLow)
	}
	lat, err := request("latch", cfg.Latch, latchOpts...)
	if err != nil {
		return fail(err)
	}
	lines.Latch = &cdevOutput{line: lat, name: "latch"}

	if cfg.DataIn != "" {
		din, err := request("data in", cfg.DataIn, gpiocdev.AsInput)
		if err != nil {
			return fail(err)
		}
		lines.DataIn = &cdevInput{line: din, name: "data in"}
	}
	if cfg.DataOut != "" {
		dout, err := request("data out", cfg.DataOut, gpiocdev.AsOutput(0))
		if err != nil {
			return fail(err)
		}
		lines.DataOut = &cdevOutput{line: dout, name: "data out"}
	}

	lines.close = func() error {
		var err error
		// Hand the lines back as inputs with pull-down, matching the Pi's
		// boot defaults, so the registers see a quiet bus after we exit.
		for _, l := range requested {
			if rerr := l.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); rerr != nil {
				err = multierr.Append(err, fmt.Errorf("reconfigure line %d: %w", l.Offset(), rerr))
			}
			if cerr := l.Close(); cerr != nil {
				err = multierr.Append(err, fmt.Errorf("close line %d: %w", l.Offset(), cerr))
			}
		}
		if cerr := chip.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("close chip: %w", cerr))
		}
		return err
	}
	return lines, nil
}

// lineOffset accepts a numeric offset or a line name on the given chip.
func lineOffset(chip, id string) (int, error) {
	if offset, err := strconv.Atoi(id); err == nil {
		return offset, nil
	}
	found, offset, err := gpiocdev.FindLine(id)
	if err != nil {
		return 0, err
	}
	if found != chip {
		return 0, fmt.Errorf("line is on %s, not %s", found, chip)
	}
	return offset, nil
}
