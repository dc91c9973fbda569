package valve

// FakeValve is a test double recording every state change.
type FakeValve struct {
	// Open is the current state.
	Open bool

	// Sets records every successful Set call in order.
	Sets []bool

	// SetError, if set, will be returned by Set.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeValve creates a closed FakeValve.
func NewFakeValve() *FakeValve {
	return &FakeValve{}
}

// Set records the requested state.
func (f *FakeValve) Set(open bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Open = open
	f.Sets = append(f.Sets, open)
	return nil
}

// IsOpen returns the current state.
func (f *FakeValve) IsOpen() bool {
	return f.Open
}

// Close shuts the valve and marks the fake as closed.
func (f *FakeValve) Close() error {
	f.Open = false
	f.Closed = true
	return nil
}
