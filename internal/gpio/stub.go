//go:build !linux

package gpio

import "errors"

// openGPIOCDev is not available on non-Linux platforms.
func openGPIOCDev(cfg Config) (*Lines, error) {
	return nil, errors.New("gpio: gpiocdev backend not supported on this platform (requires Linux)")
}
