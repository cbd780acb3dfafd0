package shiftreg

import (
	"fmt"
	"time"
)

// Option configures the timing of a chain.
type Option func(*timing)

// WithPulseWidth holds every line level for d after each transition.
// Zero, the default, toggles as fast as the lines allow.
func WithPulseWidth(d time.Duration) Option {
	return func(t *timing) {
		t.width = d
	}
}

// WithSleep replaces the delay primitive used by WithPulseWidth.
func WithSleep(sleep func(time.Duration)) Option {
	return func(t *timing) {
		if sleep != nil {
			t.sleep = sleep
		}
	}
}

type timing struct {
	width time.Duration
	sleep func(time.Duration)
}

func newTiming(opts []Option) timing {
	t := timing{sleep: time.Sleep}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

func (t timing) hold() {
	if t.width > 0 {
		t.sleep(t.width)
	}
}

// pulse drives l high then low.
func (t timing) pulse(l OutputLine, name string) error {
	if err := l.SetHigh(); err != nil {
		return fmt.Errorf("%s high: %w", name, err)
	}
	t.hold()
	if err := l.SetLow(); err != nil {
		return fmt.Errorf("%s low: %w", name, err)
	}
	t.hold()
	return nil
}

// shiftOut writes buf into a SIPO cascade. The highest index goes first so
// that after len(buf) clocks bit 0 sits in the first stage of the first
// chip. One latch pulse then moves the whole word to the outputs.
func (t timing) shiftOut(clock, latch, data OutputLine, buf *BitBuffer) error {
	if buf.Len() == 0 {
		return nil
	}
	for i := buf.Len() - 1; i >= 0; i-- {
		if err := drive(data, buf.Get(i)); err != nil {
			return fmt.Errorf("data out bit %d: %w", i, err)
		}
		t.hold()
		if err := t.pulse(clock, "clock"); err != nil {
			return fmt.Errorf("shift out bit %d: %w", i, err)
		}
	}
	return t.pulse(latch, "latch")
}

// shiftIn reads a PISO cascade into buf. After the latch pulse the data
// line already shows bit 0, so each step samples first and clocks second.
func (t timing) shiftIn(clock, latch OutputLine, data InputLine, buf *BitBuffer) error {
	if buf.Len() == 0 {
		return nil
	}
	if err := t.pulse(latch, "latch"); err != nil {
		return err
	}
	for i := 0; i < buf.Len(); i++ {
		level, err := data.IsHigh()
		if err != nil {
			return fmt.Errorf("data in bit %d: %w", i, err)
		}
		buf.Set(i, level)
		if err := t.pulse(clock, "clock"); err != nil {
			return fmt.Errorf("shift in bit %d: %w", i, err)
		}
	}
	return nil
}
