//go:build linux

package gpio

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// RpioPin is a Pin backed by memory-mapped BCM2835 GPIO registers.
//
// Register access avoids a syscall per sample, which keeps the polling
// granularity well under a microsecond. rpio maps the register block
// process-wide, so at most one RpioPin should be open at a time.
type RpioPin struct {
	pin rpio.Pin
}

// NewRpioPin maps the GPIO registers and configures pin as an input.
func NewRpioPin(pin int) (*RpioPin, error) {
	if pin < 0 || pin > 53 {
		return nil, fmt.Errorf("pin %d out of range (bcm2835 has 54 pins)", pin)
	}
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio memory: %w", err)
	}
	p := rpio.Pin(pin)
	p.Input()
	return &RpioPin{pin: p}, nil
}

// Input switches the pin to input mode.
func (p *RpioPin) Input() error {
	p.pin.Input()
	return nil
}

// Output switches the pin to output mode driving initial.
func (p *RpioPin) Output(initial Level) error {
	// Latch the level first so the pin never glitches to the stale value.
	p.pin.Write(rpio.State(initial))
	p.pin.Output()
	return nil
}

// Write sets the output level.
func (p *RpioPin) Write(level Level) error {
	p.pin.Write(rpio.State(level))
	return nil
}

// Read samples the pin level.
func (p *RpioPin) Read() (Level, error) {
	if p.pin.Read() == rpio.High {
		return High, nil
	}
	return Low, nil
}

// Close leaves the pin as an input and unmaps the registers.
func (p *RpioPin) Close() error {
	p.pin.Input()
	return rpio.Close()
}
