package gpio

import "errors"

// FakePin is a test double that records mode changes and returns
// scripted levels.
type FakePin struct {
	// Levels contains scripted values returned by Read while in input mode.
	// Each call consumes the next level; the last one repeats.
	Levels []Level

	// index tracks current position in Levels
	index int

	// Mode is the current physical direction.
	Mode Direction

	// Driven is the last level written while in output mode.
	Driven Level

	// Calls records every method invocation in order, e.g. "input",
	// "output(LOW)", "write(LOW)", "read".
	Calls []string

	// InputCalls and OutputCalls count physical direction changes.
	InputCalls  int
	OutputCalls int

	// Closed tracks if Close was called.
	Closed bool

	// Err, if set, is returned by every method except Close.
	Err error
}

// NewFakePin creates a FakePin in input mode with the given levels.
func NewFakePin(levels ...Level) *FakePin {
	return &FakePin{Levels: levels}
}

// Input switches the fake to input mode.
func (f *FakePin) Input() error {
	f.Calls = append(f.Calls, "input")
	if f.Err != nil {
		return f.Err
	}
	f.InputCalls++
	f.Mode = Input
	return nil
}

// Output switches the fake to output mode.
func (f *FakePin) Output(initial Level) error {
	f.Calls = append(f.Calls, "output("+initial.String()+")")
	if f.Err != nil {
		return f.Err
	}
	f.OutputCalls++
	f.Mode = Output
	f.Driven = initial
	return nil
}

// Write records the driven level.
func (f *FakePin) Write(level Level) error {
	f.Calls = append(f.Calls, "write("+level.String()+")")
	if f.Err != nil {
		return f.Err
	}
	f.Driven = level
	return nil
}

// Read returns the driven level in output mode, otherwise the next
// scripted level.
func (f *FakePin) Read() (Level, error) {
	f.Calls = append(f.Calls, "read")
	if f.Err != nil {
		return Low, f.Err
	}
	if f.Mode == Output {
		return f.Driven, nil
	}
	if len(f.Levels) == 0 {
		return Low, errors.New("no levels configured")
	}
	l := f.Levels[f.index]
	if f.index < len(f.Levels)-1 {
		f.index++
	}
	return l, nil
}

// Close marks the pin as closed.
func (f *FakePin) Close() error {
	f.Calls = append(f.Calls, "close")
	f.Closed = true
	return nil
}
