package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string           `json:"event,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	Valve         string           `json:"valve"`
	Reading       *ReadingJSON     `json:"reading,omitempty"`
	LastError     *ErrorJSON       `json:"last_error,omitempty"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	StartTime     string           `json:"start_time"`
	Timestamp     string           `json:"timestamp"`
	MQTT          MQTTStatus       `json:"mqtt"`
	Counts        CountsJSON       `json:"counts"`
	ErrorKinds    map[string]int64 `json:"error_kinds,omitempty"`
	Network       *NetworkJSON     `json:"network,omitempty"`
	Config        ConfigJSON       `json:"config"`
}

// ReadingJSON is the last successful reading.
type ReadingJSON struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Timestamp   string  `json:"timestamp"`
}

// ErrorJSON is the last failed read.
type ErrorJSON struct {
	Message   string `json:"message"`
	Kind      string `json:"kind"`
	Timestamp string `json:"timestamp"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of cycle counts.
type CountsJSON struct {
	Readings   int `json:"readings"`
	ReadErrors int `json:"read_errors"`
	Waterings  int `json:"waterings"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Model          string  `json:"model"`
	Backend        string  `json:"backend"`
	PinSensor      int     `json:"pin_sensor"`
	PinValve       int     `json:"pin_valve"`
	PollMs         int64   `json:"poll_ms"`
	HeartbeatMs    int64   `json:"heartbeat_ms"`
	MaxHumidity    float64 `json:"max_humidity"`
	MinTemperature float64 `json:"min_temperature"`
	WaterForMs     int64   `json:"water_for_ms"`
	CooldownMs     int64   `json:"cooldown_ms"`
	Broker         string  `json:"broker"`
	HTTPPort       string  `json:"http_port"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Valve:         snap.Valve(),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Readings:   snap.Counts.Readings,
			ReadErrors: snap.Counts.ReadErrors,
			Waterings:  snap.Counts.Waterings,
		},
		Config: ConfigJSON(snap.Config),
	}

	if snap.LastReading != nil {
		inner.Reading = &ReadingJSON{
			Temperature: snap.LastReading.Temperature,
			Humidity:    snap.LastReading.Humidity,
			Timestamp:   snap.LastReadingAt.UTC().Format(time.RFC3339),
		}
	}
	if snap.LastError != "" {
		inner.LastError = &ErrorJSON{
			Message:   snap.LastError,
			Kind:      snap.LastErrorKind,
			Timestamp: snap.LastErrorAt.UTC().Format(time.RFC3339),
		}
	}
	if len(snap.ErrorKinds) > 0 {
		inner.ErrorKinds = make(map[string]int64, len(snap.ErrorKinds))
		for _, ec := range snap.ErrorKinds {
			inner.ErrorKinds[ec.Kind] = ec.Count
		}
	}
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
