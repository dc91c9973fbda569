package dht

import (
	"time"

	"github.com/sweeney/irrigator/internal/gpio"
)

// Widths are the pulse widths a SimSensor transmits.
type Widths struct {
	ResponseDelay time.Duration // release to first pull-down
	AckLow        time.Duration
	AckHigh       time.Duration
	BitLow        time.Duration
	Zero          time.Duration
	One           time.Duration
}

// NominalWidths returns DHT11 datasheet widths.
func NominalWidths() Widths {
	return Widths{
		ResponseDelay: 30 * time.Microsecond,
		AckLow:        80 * time.Microsecond,
		AckHigh:       80 * time.Microsecond,
		BitLow:        50 * time.Microsecond,
		Zero:          27 * time.Microsecond,
		One:           70 * time.Microsecond,
	}
}

// Pulse is one segment of a simulated transmission.
type Pulse struct {
	Level gpio.Level
	Width time.Duration
}

// EncodeResponse returns the pulse train a sensor sends for f after the
// host releases the line: response delay, acknowledgment, 40 bits and the
// trailing low that ends the last bit.
func EncodeResponse(f Frame, w Widths) []Pulse {
	p := []Pulse{
		{gpio.High, w.ResponseDelay},
		{gpio.Low, w.AckLow},
		{gpio.High, w.AckHigh},
	}
	for i := 0; i < FrameBits; i++ {
		hi := w.Zero
		if f[i/8]&(0x80>>(i%8)) != 0 {
			hi = w.One
		}
		p = append(p, Pulse{gpio.Low, w.BitLow}, Pulse{gpio.High, hi})
	}
	return append(p, Pulse{gpio.Low, w.BitLow})
}

// SimSensor simulates a DHT sensor wired to a pull-up line. It implements
// gpio.Pin for the host side and Clock for the sampler, sharing one
// virtual timeline. Every Read advances time by Step.
type SimSensor struct {
	// Frame is transmitted on each start signal unless Script is set.
	Frame  Frame
	Widths Widths

	// Script, if set, is replayed verbatim after each start signal.
	Script []Pulse

	// Silent makes the sensor ignore start signals.
	Silent bool

	// MinStart is the shortest low the sensor accepts as a start signal.
	MinStart time.Duration

	// Step is the virtual time consumed by one Read.
	Step time.Duration

	// Starts counts accepted start signals.
	Starts int

	// Reads counts samples taken.
	Reads int

	now      time.Duration
	mode     gpio.Direction
	driven   gpio.Level
	lowSince time.Duration
	script   []Pulse
	origin   time.Duration
}

// NewSimSensor returns a responsive sensor transmitting f with nominal
// widths.
func NewSimSensor(f Frame) *SimSensor {
	return &SimSensor{
		Frame:    f,
		Widths:   NominalWidths(),
		MinStart: time.Millisecond,
		Step:     time.Microsecond,
	}
}

func (s *SimSensor) hostLow() bool {
	return s.mode == gpio.Output && s.driven == gpio.Low
}

func (s *SimSensor) set(mode gpio.Direction, level gpio.Level) {
	wasLow := s.hostLow()
	s.mode, s.driven = mode, level
	if !wasLow && s.hostLow() {
		// Pulling the line low aborts any transmission in progress.
		s.lowSince = s.now
		s.script = nil
	}
}

// Input releases the line. A preceding low of at least MinStart starts a
// transmission.
func (s *SimSensor) Input() error {
	if s.hostLow() && !s.Silent && s.now-s.lowSince >= s.MinStart {
		s.Starts++
		s.origin = s.now
		s.script = s.Script
		if s.script == nil {
			s.script = EncodeResponse(s.Frame, s.Widths)
		}
	}
	s.set(gpio.Input, s.driven)
	return nil
}

// Output drives the line.
func (s *SimSensor) Output(initial gpio.Level) error {
	s.set(gpio.Output, initial)
	return nil
}

// Write changes the driven level.
func (s *SimSensor) Write(level gpio.Level) error {
	s.set(s.mode, level)
	return nil
}

// Read samples the line and advances time by Step.
func (s *SimSensor) Read() (gpio.Level, error) {
	l := s.level()
	s.now += s.Step
	s.Reads++
	return l, nil
}

func (s *SimSensor) level() gpio.Level {
	if s.mode == gpio.Output {
		return s.driven
	}
	t := s.now - s.origin
	for _, p := range s.script {
		if t < p.Width {
			return p.Level
		}
		t -= p.Width
	}
	// Idle: the pull-up holds the line high.
	return gpio.High
}

// Close is a no-op.
func (s *SimSensor) Close() error {
	return nil
}

// Now returns the virtual time.
func (s *SimSensor) Now() time.Duration {
	return s.now
}

// Spin advances virtual time by d.
func (s *SimSensor) Spin(d time.Duration) {
	s.now += d
}
