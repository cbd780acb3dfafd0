package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sweeney/shiftio/internal/logging"
	"github.com/sweeney/shiftio/internal/logic"
	"github.com/sweeney/shiftio/internal/shiftreg"
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Update the chain once and print its pins",
	Long: `Run one update and print the inputs (and buffered outputs) as bit strings,
pin 0 first, one space every 8 pins.

On an out or dual chain the update also drives every output low.`,
	Args: cobra.NoArgs,
	RunE: runRead,
}

var writeCmd = &cobra.Command{
	Use:   "write pin=state...",
	Short: "Set outputs and latch them",
	Long: `Buffer the given outputs and run one update. Pins are indexes or names given with
--output-name; states are on/off, 1/0, true/false or high/low. Outputs not named
are driven low.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWrite,
}

func init() {
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(writeCmd)
}

func runRead(cmd *cobra.Command, _ []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	c, err := openChain(logging.Component(log, "gpio"))
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Update(); err != nil {
		return err
	}
	printPins(cmd.OutOrStdout(), c.Inputs(), c.Outputs())
	return nil
}

func runWrite(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	c, err := openChain(logging.Component(log, "gpio"))
	if err != nil {
		return err
	}
	defer c.Close()

	if c.outputs == nil {
		return errors.New("write: chain has no outputs (use --mode out or dual)")
	}
	for _, arg := range args {
		command, err := logic.ParseCommand(arg, c.outputs)
		if err != nil {
			return err
		}
		if err := c.Set(command.Pin, command.State.Level()); err != nil {
			return err
		}
	}
	if err := c.Update(); err != nil {
		return err
	}
	printPins(cmd.OutOrStdout(), c.Inputs(), c.Outputs())
	return nil
}

func printPins(w io.Writer, inputs, outputs []bool) {
	if inputs != nil {
		fmt.Fprintf(w, "inputs:  %s\n", bitString(inputs))
	}
	if outputs != nil {
		fmt.Fprintf(w, "outputs: %s\n", bitString(outputs))
	}
}

func bitString(levels []bool) string {
	buf := shiftreg.NewBitBuffer(len(levels))
	for i, l := range levels {
		buf.Set(i, l)
	}
	return buf.String()
}
