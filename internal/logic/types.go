// Package logic contains pure business logic for the watering decision.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Reading is a validated sensor measurement.
type Reading struct {
	Temperature float64 // °C
	Humidity    float64 // %RH
}

// EventType identifies what happened during a control cycle.
type EventType string

const (
	EventReading    EventType = "READING"
	EventReadError  EventType = "READ_ERROR"
	EventValveOpen  EventType = "VALVE_OPEN"
	EventValveClose EventType = "VALVE_CLOSE"
)

// Event is something to be published and logged.
type Event struct {
	Timestamp time.Time
	Type      EventType
	// Reading is set for READING and VALVE_OPEN events.
	Reading *Reading
	// Error is the read failure for READ_ERROR events.
	Error string
	// ErrorKind labels the failure, e.g. "ChecksumMismatch".
	ErrorKind string
	// ValveOpen is the valve state after the event.
	ValveOpen bool
}

// Input is the outcome of one sensor read.
type Input struct {
	Time    time.Time
	Reading Reading
	// Err is non-nil when the read failed; Reading is then ignored.
	Err error
	// ErrKind labels Err for counters.
	ErrKind string
}

// Counts tracks cycle outcomes since startup.
type Counts struct {
	Readings   int
	ReadErrors int
	Waterings  int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    Counts
}
