// Package valve drives the irrigation solenoid valve.
//
// The valve is a separate GPIO line request from the sensor line, so a
// valve toggle never holds a handle the sensor protocol needs.
package valve

// Valve opens and closes the water supply.
type Valve interface {
	// Set opens (true) or closes (false) the valve.
	Set(open bool) error

	// IsOpen returns the last state successfully set.
	IsOpen() bool

	// Close shuts the valve and releases the output.
	Close() error
}

func stateString(open bool) string {
	if open {
		return "OPEN"
	}
	return "CLOSED"
}

// State returns "OPEN" or "CLOSED" for display.
func State(v Valve) string {
	return stateString(v.IsOpen())
}
