package gpio

import "fmt"

// OpenDrainLine emulates an open-drain bus on a push-pull pin.
//
// Releasing the line switches the pin to input so the external pull-up
// resistor takes it high. Driving low switches the pin to output low.
// The pull-up is a hardware precondition; software cannot provide it.
//
// An OpenDrainLine owns its pin for the life of the process. It is not
// safe for concurrent use.
type OpenDrainLine struct {
	pin Pin
	dir Direction
}

// NewOpenDrainLine takes ownership of pin and leaves the line released.
func NewOpenDrainLine(pin Pin) (*OpenDrainLine, error) {
	if err := pin.Input(); err != nil {
		return nil, fmt.Errorf("release line: %w", err)
	}
	return &OpenDrainLine{pin: pin, dir: Input}, nil
}

// Release lets the line float high. No-op if already released.
func (l *OpenDrainLine) Release() error {
	if l.dir == Input {
		return nil
	}
	if err := l.pin.Input(); err != nil {
		return fmt.Errorf("switch to input: %w", err)
	}
	l.dir = Input
	return nil
}

// DriveLow pulls the line low. The direction switch is skipped when the
// pin is already an output, but the low level is always written.
func (l *OpenDrainLine) DriveLow() error {
	if l.dir != Output {
		if err := l.pin.Output(Low); err != nil {
			return fmt.Errorf("switch to output: %w", err)
		}
		l.dir = Output
	}
	if err := l.pin.Write(Low); err != nil {
		return fmt.Errorf("drive low: %w", err)
	}
	return nil
}

// ReadLevel samples the line. It returns ErrLineDriven while the host is
// driving the line.
func (l *OpenDrainLine) ReadLevel() (Level, error) {
	if l.dir != Input {
		return Low, ErrLineDriven
	}
	return l.pin.Read()
}

// Direction returns the current logical direction.
func (l *OpenDrainLine) Direction() Direction {
	return l.dir
}

// Close releases the line and closes the pin.
func (l *OpenDrainLine) Close() error {
	relErr := l.Release()
	if err := l.pin.Close(); err != nil {
		return fmt.Errorf("close pin: %w", err)
	}
	return relErr
}
