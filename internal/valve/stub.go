//go:build !linux

package valve

import "errors"

// CdevValve is not available on non-Linux platforms.
type CdevValve struct{}

// NewCdevValve returns an error on non-Linux platforms.
func NewCdevValve(chipName string, offset int, activeLow bool) (*CdevValve, error) {
	return nil, errors.New("valve: not supported on this platform (requires Linux)")
}

// Set is not implemented on non-Linux platforms.
func (v *CdevValve) Set(open bool) error {
	return errors.New("valve: not supported")
}

// IsOpen always reports closed.
func (v *CdevValve) IsOpen() bool {
	return false
}

// Close is not implemented on non-Linux platforms.
func (v *CdevValve) Close() error {
	return nil
}
