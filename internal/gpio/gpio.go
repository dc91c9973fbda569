// Package gpio provides the physical pin backends and the open-drain line
// emulation the sensor protocol runs on.
// The real implementations use the Linux GPIO character device or the
// memory-mapped BCM2835 registers.
// The fake implementation allows testing without hardware.
package gpio

import (
	"errors"
	"fmt"
)

// Level is the electrical level of a line.
type Level int

const (
	Low  Level = 0
	High Level = 1
)

func (l Level) String() string {
	if l == High {
		return "HIGH"
	}
	return "LOW"
}

// Direction is the configured mode of a pin.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "OUTPUT"
	}
	return "INPUT"
}

// Pin is a push-pull GPIO pin. Implementations own the underlying
// hardware handle exclusively.
type Pin interface {
	// Input configures the pin as a high-impedance input.
	Input() error

	// Output configures the pin as an output driving initial.
	Output(initial Level) error

	// Write sets the driven level. Only meaningful while in output mode.
	Write(level Level) error

	// Read samples the current level of the pin.
	Read() (Level, error)

	// Close releases the pin.
	Close() error
}

// Default pin assignments (BCM numbering).
const (
	DefaultPinSensor = 24
	DefaultPinValve  = 23
)

// DefaultChip is the GPIO character device used on a Raspberry Pi.
const DefaultChip = "gpiochip0"

// ErrLineDriven is returned when reading an open-drain line that is
// currently driven low by the host.
var ErrLineDriven = errors.New("gpio: line is driven by host, release it before reading")

// Backend selects the physical pin implementation.
type Backend string

const (
	BackendCdev Backend = "cdev"
	BackendRpio Backend = "rpio"
)

// ParseBackend validates a backend name.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case BackendCdev, BackendRpio:
		return Backend(s), nil
	}
	return "", fmt.Errorf("gpio: unknown backend %q (want %q or %q)", s, BackendCdev, BackendRpio)
}

// OpenPin opens pin on the given backend. chip is only used by the cdev
// backend.
func OpenPin(backend Backend, chip string, pin int) (Pin, error) {
	switch backend {
	case BackendCdev:
		p, err := NewCdevPin(chip, pin)
		if err != nil {
			return nil, err
		}
		return p, nil
	case BackendRpio:
		p, err := NewRpioPin(pin)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, fmt.Errorf("gpio: unknown backend %q", backend)
}
