// Command shiftio drives a chain of cascaded 8-bit shift registers
// (74HC595 outputs, 74HC165 inputs) and bridges its pins to MQTT and HTTP.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
