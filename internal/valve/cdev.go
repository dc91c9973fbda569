//go:build linux

package valve

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// CdevValve drives the valve relay through the GPIO character device.
type CdevValve struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
	open bool
}

// NewCdevValve requests offset on chip as an output with the valve closed.
// activeLow suits relay boards that energise on a low input.
func NewCdevValve(chipName string, offset int, activeLow bool) (*CdevValve, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer("irrigator-valve"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	opts := []gpiocdev.LineReqOption{gpiocdev.AsOutput(0)}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}
	line, err := chip.RequestLine(offset, opts...)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request valve pin %d: %w", offset, err)
	}

	return &CdevValve{chip: chip, line: line}, nil
}

// Set drives the relay. The line is active-level aware, so 1 always means
// open.
func (v *CdevValve) Set(open bool) error {
	val := 0
	if open {
		val = 1
	}
	if err := v.line.SetValue(val); err != nil {
		return fmt.Errorf("set valve %s: %w", stateString(open), err)
	}
	v.open = open
	return nil
}

// IsOpen returns the last state set.
func (v *CdevValve) IsOpen() bool {
	return v.open
}

// Close shuts the valve before releasing the line so water never runs
// unattended.
func (v *CdevValve) Close() error {
	var errs []error
	if v.line != nil {
		if err := v.Set(false); err != nil {
			errs = append(errs, err)
		}
		if err := v.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close valve pin: %w", err))
		}
	}
	if v.chip != nil {
		if err := v.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	return errors.Join(errs...)
}
