package dht

import (
	"errors"
	"fmt"
	"time"
)

// Timing holds the protocol intervals. Every wait in Read comes from here
// so sibling sensors with different nominal timings need no code change.
type Timing struct {
	// StartLow is how long the host holds the line low to wake the sensor.
	StartLow time.Duration

	// ReleaseSettle is the wait after releasing the line before sampling.
	// A direction switch is not instantly valid on real GPIO controllers.
	ReleaseSettle time.Duration

	// ResponseTimeout bounds how long the line may stay high after the
	// release before the sensor pulls it low.
	ResponseTimeout time.Duration

	// AckTimeout bounds each half of the 80µs/80µs acknowledgment.
	AckTimeout time.Duration

	// BitLowTimeout bounds the bit-start marker.
	BitLowTimeout time.Duration

	// BitHighTimeout bounds the value-carrying high pulse.
	BitHighTimeout time.Duration

	// BitThreshold separates 0 from 1. A high pulse longer than the
	// threshold is a 1; a pulse exactly at the threshold is a 0.
	BitThreshold time.Duration

	// MinInterval is the shortest allowed time between two reads.
	MinInterval time.Duration
}

// DefaultTiming returns the nominal datasheet timing for m.
func DefaultTiming(m Model) Timing {
	t := Timing{
		StartLow:        18 * time.Millisecond,
		ReleaseSettle:   20 * time.Microsecond,
		ResponseTimeout: 100 * time.Microsecond,
		AckTimeout:      100 * time.Microsecond,
		BitLowTimeout:   80 * time.Microsecond,
		BitHighTimeout:  100 * time.Microsecond,
		BitThreshold:    48 * time.Microsecond,
		MinInterval:     time.Second,
	}
	if m == DHT22 {
		t.StartLow = time.Millisecond
		t.MinInterval = 2 * time.Second
	}
	return t
}

// Validate reports whether the timing is usable.
func (t Timing) Validate() error {
	fields := []struct {
		name string
		d    time.Duration
	}{
		{"start low", t.StartLow},
		{"release settle", t.ReleaseSettle},
		{"response timeout", t.ResponseTimeout},
		{"ack timeout", t.AckTimeout},
		{"bit low timeout", t.BitLowTimeout},
		{"bit high timeout", t.BitHighTimeout},
		{"bit threshold", t.BitThreshold},
		{"min interval", t.MinInterval},
	}
	var errs []error
	for _, f := range fields {
		if f.d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", f.name, f.d))
		}
	}
	if t.BitThreshold >= t.BitHighTimeout {
		errs = append(errs, fmt.Errorf("bit threshold %v must be below bit high timeout %v", t.BitThreshold, t.BitHighTimeout))
	}
	if t.ReleaseSettle >= t.ResponseTimeout {
		errs = append(errs, fmt.Errorf("release settle %v must be below response timeout %v", t.ReleaseSettle, t.ResponseTimeout))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("dht: invalid timing: %w", err)
	}
	return nil
}
