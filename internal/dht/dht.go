// Package dht reads DHT-family temperature/humidity sensors over a
// single-wire, pulse-width encoded protocol.
//
// The host pulls the line low to wake the sensor, releases it, and the
// sensor answers with an 80µs low / 80µs high preamble followed by 40 data
// bits. Every bit starts with a ~50µs low marker; the width of the high
// pulse that follows encodes the value (~27µs for 0, ~70µs for 1). The
// frame is humidity (2 bytes), temperature (2 bytes) and an 8-bit
// checksum.
//
// All waits are busy-waits. The protocol's timing budget is tens of
// microseconds, well below what a scheduler sleep can honour.
package dht

import (
	"fmt"
	"strings"
)

// Model is a member of the DHT sensor family.
type Model int

const (
	DHT11 Model = iota + 1
	// DHT22 also covers the AM2302, its packaged form.
	DHT22
)

func (m Model) String() string {
	switch m {
	case DHT11:
		return "DHT11"
	case DHT22:
		return "DHT22"
	default:
		return fmt.Sprintf("Model(%d)", int(m))
	}
}

// ParseModel converts a name such as "dht11" or "am2302" to a Model.
func ParseModel(s string) (Model, error) {
	switch strings.ToLower(s) {
	case "dht11":
		return DHT11, nil
	case "dht22", "am2302":
		return DHT22, nil
	}
	return 0, fmt.Errorf("dht: unknown model %q", s)
}
