package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/sweeney/shiftio/internal/bank"
	"github.com/sweeney/shiftio/internal/gpio"
	"github.com/sweeney/shiftio/internal/logging"
	"github.com/sweeney/shiftio/internal/logic"
	"github.com/sweeney/shiftio/internal/shiftreg"
)

// chainFlags describe the wiring of the chain. They are shared by every
// command.
type chainFlags struct {
	backend        string
	chip           string
	clock          string
	latch          string
	dataIn         string
	dataOut        string
	latchActiveLow bool
	mode           string
	chips          int
	pulseWidth     time.Duration
	inputNames     []string
	outputNames    []string
	logLevel       string
}

var flags = defaultChainFlags()

var rootCmd = &cobra.Command{
	Use:   "shiftio",
	Short: "Shift register chain driver",
	Long: `Drive a chain of cascaded 8-bit shift registers over three or four GPIO lines:
74HC595 style outputs, 74HC165 style inputs, or both on a shared clock and latch.

Examples:
  shiftio read --mode in --chips 2                  # Sample 16 inputs once
  shiftio write --mode out 0=on 7=on                # Drive outputs 0 and 7 high, the rest low
  shiftio run --mode dual --broker tcp://pi:1883    # Poll, publish and accept commands
  shiftio run --backend sim --http :8080            # Run against the register simulator`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.backend, "backend", flags.backend, "GPIO backend: gpiocdev, periph or sim")
	pf.StringVar(&flags.chip, "chip", flags.chip, "gpiochip name or path (gpiocdev)")
	pf.StringVar(&flags.clock, "clock", flags.clock, "clock line (offset or name)")
	pf.StringVar(&flags.latch, "latch", flags.latch, "latch line (offset or name)")
	pf.StringVar(&flags.dataIn, "data-in", flags.dataIn, "serial data line from the input registers")
	pf.StringVar(&flags.dataOut, "data-out", flags.dataOut, "serial data line to the output registers")
	pf.BoolVar(&flags.latchActiveLow, "latch-active-low", flags.latchActiveLow, "latch is active low (74HC165 PL)")
	pf.StringVar(&flags.mode, "mode", flags.mode, "chain mode: in, out or dual")
	pf.IntVar(&flags.chips, "chips", flags.chips, "number of chips per side")
	pf.DurationVar(&flags.pulseWidth, "pulse-width", flags.pulseWidth, "minimum clock and latch pulse width (0 for none)")
	pf.StringArrayVar(&flags.inputNames, "input-name", nil, "name an input pin, index=name (repeatable)")
	pf.StringArrayVar(&flags.outputNames, "output-name", nil, "name an output pin, index=name (repeatable)")
	pf.StringVar(&flags.logLevel, "log-level", flags.logLevel, "log level: debug, info, warn or error")
}

func defaultChainFlags() chainFlags {
	return chainFlags{
		backend:  gpio.BackendGPIOCDev,
		chip:     gpio.DefaultChip,
		clock:    gpio.DefaultClock,
		latch:    gpio.DefaultLatch,
		dataIn:   gpio.DefaultDataIn,
		dataOut:  gpio.DefaultDataOut,
		mode:     string(bank.ModeDual),
		chips:    1,
		logLevel: logging.DefaultLevel,
	}
}

// resetFlags restores the defaults. Tests call it between commands.
func resetFlags() {
	flags = defaultChainFlags()
	runFlags = defaultRunFlags()
}

// chain is an opened chain with its pin names.
type chain struct {
	*bank.Bank
	lines   *gpio.Lines
	inputs  logic.Names // nil without inputs
	outputs logic.Names // nil without outputs
}

func (c *chain) Close() error {
	return c.lines.Close()
}

// openChain opens the lines and builds the chain described by flags.
func openChain(log *logrus.Entry) (_ *chain, err error) {
	mode, err := bank.ParseMode(flags.mode)
	if err != nil {
		return nil, err
	}
	if flags.chips < 0 {
		return nil, fmt.Errorf("--chips must not be negative")
	}

	cfg := gpio.Config{
		Chip:           flags.chip,
		Clock:          flags.clock,
		Latch:          flags.latch,
		LatchActiveLow: flags.latchActiveLow,
		Consumer:       "shiftio",
		Chips:          flags.chips,
	}
	if mode.HasInputs() {
		cfg.DataIn = flags.dataIn
	}
	if mode.HasOutputs() {
		cfg.DataOut = flags.dataOut
	}

	lines, err := gpio.Open(flags.backend, cfg)
	if err != nil {
		return nil, fmt.Errorf("open lines: %w", err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, lines.Close())
		}
	}()

	b, err := bank.New(mode, flags.chips, lines, shiftreg.WithPulseWidth(flags.pulseWidth))
	if err != nil {
		return nil, fmt.Errorf("build chain: %w", err)
	}

	c := &chain{Bank: b, lines: lines}
	if mode.HasInputs() {
		if c.inputs, err = logic.ParseNames("in", b.Bits(), flags.inputNames); err != nil {
			return nil, err
		}
	} else if len(flags.inputNames) > 0 {
		log.Warn("--input-name ignored: chain has no inputs")
	}
	if mode.HasOutputs() {
		if c.outputs, err = logic.ParseNames("out", b.Bits(), flags.outputNames); err != nil {
			return nil, err
		}
	} else if len(flags.outputNames) > 0 {
		log.Warn("--output-name ignored: chain has no outputs")
	}

	log.WithFields(logrus.Fields{
		"backend": flags.backend,
		"mode":    mode,
		"chips":   flags.chips,
	}).Debug("chain opened")
	return c, nil
}

func newLogger() (*logrus.Entry, error) {
	return logging.New(flags.logLevel)
}
