package dht

import "time"

// Clock is the time source for the busy-wait primitives.
type Clock interface {
	// Now returns a monotonic offset from an arbitrary origin.
	Now() time.Duration

	// Spin blocks for d without yielding to a coarse scheduler sleep.
	Spin(d time.Duration)
}

// sleepSlack is how much of a long wait is spun rather than slept.
const sleepSlack = 2 * time.Millisecond

// SpinClock is the hardware clock. It reads the runtime's monotonic clock.
type SpinClock struct {
	epoch time.Time
}

// NewSpinClock returns a clock whose origin is now.
func NewSpinClock() *SpinClock {
	return &SpinClock{epoch: time.Now()}
}

// Now returns the time since the clock was created.
func (c *SpinClock) Now() time.Duration {
	return time.Since(c.epoch)
}

// Spin waits for d. Waits longer than sleepSlack sleep the bulk and spin
// the remainder.
func (c *SpinClock) Spin(d time.Duration) {
	deadline := time.Now().Add(d)
	if d > sleepSlack {
		time.Sleep(d - sleepSlack)
	}
	for time.Now().Before(deadline) {
	}
}
