//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// consumer labels our line requests in the kernel's GPIO debug output.
const consumer = "irrigator"

// CdevPin is a Pin backed by the Linux GPIO character device.
type CdevPin struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewCdevPin requests offset on chip as an input.
func NewCdevPin(chipName string, offset int) (*CdevPin, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// No bias: the sensor line relies on its external pull-up.
	line, err := chip.RequestLine(offset, gpiocdev.AsInput)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request pin %d: %w", offset, err)
	}

	return &CdevPin{chip: chip, line: line}, nil
}

// Input reconfigures the line as an input.
func (p *CdevPin) Input() error {
	return p.line.Reconfigure(gpiocdev.AsInput)
}

// Output reconfigures the line as an output driving initial.
func (p *CdevPin) Output(initial Level) error {
	return p.line.Reconfigure(gpiocdev.AsOutput(int(initial)))
}

// Write sets the output value.
func (p *CdevPin) Write(level Level) error {
	return p.line.SetValue(int(level))
}

// Read returns the current line value.
func (p *CdevPin) Read() (Level, error) {
	v, err := p.line.Value()
	if err != nil {
		return Low, err
	}
	if v == 0 {
		return Low, nil
	}
	return High, nil
}

// Close returns the line to input and releases the request and the chip.
func (p *CdevPin) Close() error {
	var errs []error
	if p.line != nil {
		if err := p.line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin: %w", err))
		}
		if err := p.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin: %w", err))
		}
	}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	return errors.Join(errs...)
}
