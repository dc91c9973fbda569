//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// CdevPin is not available on non-Linux platforms.
type CdevPin struct{}

// NewCdevPin returns an error on non-Linux platforms.
func NewCdevPin(chipName string, offset int) (*CdevPin, error) {
	return nil, errUnsupported
}

func (p *CdevPin) Input() error               { return errUnsupported }
func (p *CdevPin) Output(initial Level) error { return errUnsupported }
func (p *CdevPin) Write(level Level) error    { return errUnsupported }
func (p *CdevPin) Read() (Level, error)       { return Low, errUnsupported }
func (p *CdevPin) Close() error               { return nil }

// RpioPin is not available on non-Linux platforms.
type RpioPin struct{}

// NewRpioPin returns an error on non-Linux platforms.
func NewRpioPin(pin int) (*RpioPin, error) {
	return nil, errUnsupported
}

func (p *RpioPin) Input() error               { return errUnsupported }
func (p *RpioPin) Output(initial Level) error { return errUnsupported }
func (p *RpioPin) Write(level Level) error    { return errUnsupported }
func (p *RpioPin) Read() (Level, error)       { return Low, errUnsupported }
func (p *RpioPin) Close() error               { return nil }
