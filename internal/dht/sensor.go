package dht

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/sweeney/irrigator/internal/gpio"
)

// Line is the open-drain bus the sensor sits on.
type Line interface {
	LevelReader
	Release() error
	DriveLow() error
}

// Read performs one full transaction: start signal, acknowledgment,
// 40-bit capture and validation. It never retries; on any error the caller
// must wait at least timing.MinInterval and call Read again.
//
// Read must not run concurrently with anything else touching line.
func Read(line Line, s *Sampler, m Model, t Timing) (Reading, error) {
	// Keep the polling loop on one OS thread for the whole transaction.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	// Host start: line idles high, host holds it low to wake the sensor.
	if err := line.Release(); err != nil {
		return Reading{}, fmt.Errorf("dht: %s: %w", PhaseHostStart, err)
	}
	if err := line.DriveLow(); err != nil {
		return Reading{}, fmt.Errorf("dht: %s: %w", PhaseHostStart, err)
	}
	s.Sleep(t.StartLow)
	if err := line.Release(); err != nil {
		return Reading{}, fmt.Errorf("dht: %s: %w", PhaseHostStart, err)
	}
	s.Sleep(t.ReleaseSettle)

	// The sensor may already be pulling low after the settle, so a
	// zero-length high is fine here.
	d, err := s.MeasurePulse(gpio.High, t.ResponseTimeout)
	if err != nil {
		return Reading{}, pulseErr(err, NoResponse, PhaseWaitAck, -1, d)
	}

	if err := expectPulse(s, gpio.Low, t.AckTimeout, PhaseWaitAck, -1); err != nil {
		return Reading{}, err
	}
	if err := expectPulse(s, gpio.High, t.AckTimeout, PhaseWaitReady, -1); err != nil {
		return Reading{}, err
	}

	var f Frame
	for i := 0; i < FrameBits; i++ {
		if err := expectPulse(s, gpio.Low, t.BitLowTimeout, PhaseReadingBits, i); err != nil {
			return Reading{}, err
		}
		d, err := s.MeasurePulse(gpio.High, t.BitHighTimeout)
		if err != nil {
			return Reading{}, pulseErr(err, Timeout, PhaseReadingBits, i, d)
		}
		if d == 0 {
			return Reading{}, protoErr(MalformedFrame, PhaseReadingBits, i, 0)
		}
		if d > t.BitThreshold {
			f.setBit(i)
		}
	}

	return Decode(f, m)
}

// expectPulse measures a pulse that must be present and end in time.
func expectPulse(s *Sampler, level gpio.Level, timeout time.Duration, p Phase, bit int) error {
	d, err := s.MeasurePulse(level, timeout)
	if err != nil {
		return pulseErr(err, Timeout, p, bit, d)
	}
	if d == 0 {
		return protoErr(MalformedFrame, p, bit, 0)
	}
	return nil
}

// pulseErr maps a sampler error: timeouts become k, line failures are
// wrapped as is.
func pulseErr(err error, k Kind, p Phase, bit int, d time.Duration) error {
	if errors.Is(err, ErrTimeout) {
		return protoErr(k, p, bit, d)
	}
	return fmt.Errorf("dht: %s: %w", p, err)
}

// Sensor is a DHT sensor on an open-drain line.
type Sensor struct {
	line    Line
	sampler *Sampler
	model   Model
	timing  Timing
}

// NewSensor binds a sensor of model m to line, timed by clock.
func NewSensor(line Line, clock Clock, m Model, t Timing) (*Sensor, error) {
	if m != DHT11 && m != DHT22 {
		return nil, fmt.Errorf("dht: unsupported model %v", m)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Sensor{
		line:    line,
		sampler: NewSampler(line, clock),
		model:   m,
		timing:  t,
	}, nil
}

// Read performs one transaction. See the package-level Read.
func (s *Sensor) Read() (Reading, error) {
	return Read(s.line, s.sampler, s.model, s.timing)
}

// Model returns the sensor model.
func (s *Sensor) Model() Model {
	return s.model
}

// Timing returns the protocol timing in use.
func (s *Sensor) Timing() Timing {
	return s.timing
}
