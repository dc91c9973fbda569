package dht

import (
	"time"

	"github.com/sweeney/irrigator/internal/gpio"
)

// LevelReader samples the line level.
type LevelReader interface {
	ReadLevel() (gpio.Level, error)
}

// Sampler times pulses on the line by busy-polling it.
type Sampler struct {
	line  LevelReader
	clock Clock
}

// NewSampler returns a Sampler polling line against clock.
func NewSampler(line LevelReader, clock Clock) *Sampler {
	return &Sampler{line: line, clock: clock}
}

// MeasurePulse polls the line while it stays at level and returns how long
// it did. It returns 0 if the first sample is already at the other level,
// and ErrTimeout once timeout has elapsed with the level unchanged.
//
// Elapsed time is taken after each sample, so a pulse that ends exactly at
// timeout is still measured rather than reported as a timeout.
func (s *Sampler) MeasurePulse(level gpio.Level, timeout time.Duration) (time.Duration, error) {
	start := s.clock.Now()
	for first := true; ; first = false {
		l, err := s.line.ReadLevel()
		if err != nil {
			return 0, err
		}
		elapsed := s.clock.Now() - start
		if l != level {
			if first {
				return 0, nil
			}
			return elapsed, nil
		}
		if elapsed >= timeout {
			return elapsed, ErrTimeout
		}
	}
}

// Sleep busy-waits for d.
func (s *Sampler) Sleep(d time.Duration) {
	s.clock.Spin(d)
}
