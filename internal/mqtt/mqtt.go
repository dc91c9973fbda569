// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/irrigator/internal/logic"
)

// Topic is the MQTT topic for irrigation events.
const Topic = "garden/irrigation/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "garden/irrigation/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends an irrigation event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Irrigation IrrigationPayload `json:"irrigation"`
}

// IrrigationPayload contains the event details.
type IrrigationPayload struct {
	Timestamp   string   `json:"timestamp"`
	Event       string   `json:"event"`
	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	Valve       string   `json:"valve"`
	Error       string   `json:"error,omitempty"`
	ErrorKind   string   `json:"error_kind,omitempty"`
}

// FormatPayload creates the JSON payload for an irrigation event.
func FormatPayload(event logic.Event) ([]byte, error) {
	inner := IrrigationPayload{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     string(event.Type),
		Valve:     "CLOSED",
		Error:     event.Error,
		ErrorKind: event.ErrorKind,
	}
	if event.ValveOpen {
		inner.Valve = "OPEN"
	}
	if event.Reading != nil {
		temp, hum := event.Reading.Temperature, event.Reading.Humidity
		inner.Temperature = &temp
		inner.Humidity = &hum
	}
	return json.Marshal(Payload{Irrigation: inner})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// WillPayload is the last-will message the broker publishes if the
// connection drops without a clean disconnect.
func WillPayload(connectedAt time.Time) []byte {
	data, _ := FormatSystemPayload(SystemEvent{
		Timestamp: connectedAt,
		Event:     "OFFLINE",
		Reason:    "connection lost",
	})
	return data
}
