package gpio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLine(t *testing.T, levels ...Level) (*OpenDrainLine, *FakePin) {
	t.Helper()
	pin := NewFakePin(levels...)
	line, err := NewOpenDrainLine(pin)
	require.NoError(t, err)
	return line, pin
}

func TestNewOpenDrainLineStartsReleased(t *testing.T) {
	line, pin := newLine(t, High)

	assert.Equal(t, Input, line.Direction())
	assert.Equal(t, Input, pin.Mode)
	assert.Equal(t, 1, pin.InputCalls)
}

func TestNewOpenDrainLinePinError(t *testing.T) {
	pin := NewFakePin(High)
	pin.Err = errors.New("busy")

	_, err := NewOpenDrainLine(pin)
	require.Error(t, err)
	assert.ErrorIs(t, err, pin.Err)
}

func TestReleaseIsIdempotent(t *testing.T) {
	line, pin := newLine(t, High)

	require.NoError(t, line.Release())
	require.NoError(t, line.Release())

	// Only the constructor touched the pin.
	assert.Equal(t, 1, pin.InputCalls)
}

func TestDriveLowSwitchesOnceButAlwaysWrites(t *testing.T) {
	line, pin := newLine(t, High)

	require.NoError(t, line.DriveLow())
	require.NoError(t, line.DriveLow())

	assert.Equal(t, Output, line.Direction())
	assert.Equal(t, 1, pin.OutputCalls)
	assert.Equal(t, Low, pin.Driven)
	assert.Equal(t, []string{"input", "output(LOW)", "write(LOW)", "write(LOW)"}, pin.Calls)
}

func TestReleaseAfterDriveLow(t *testing.T) {
	line, pin := newLine(t, High)

	require.NoError(t, line.DriveLow())
	require.NoError(t, line.Release())

	assert.Equal(t, Input, line.Direction())
	assert.Equal(t, Input, pin.Mode)
	assert.Equal(t, 2, pin.InputCalls)
}

func TestReadLevelWhileReleased(t *testing.T) {
	line, _ := newLine(t, High, Low)

	l, err := line.ReadLevel()
	require.NoError(t, err)
	assert.Equal(t, High, l)

	l, err = line.ReadLevel()
	require.NoError(t, err)
	assert.Equal(t, Low, l)
}

func TestReadLevelWhileDrivenIsRejected(t *testing.T) {
	line, pin := newLine(t, High)
	require.NoError(t, line.DriveLow())

	_, err := line.ReadLevel()
	assert.ErrorIs(t, err, ErrLineDriven)
	assert.NotContains(t, pin.Calls, "read")
}

func TestDriveLowPinError(t *testing.T) {
	line, pin := newLine(t, High)
	pin.Err = errors.New("ioctl failed")

	err := line.DriveLow()
	require.Error(t, err)
	// A failed switch leaves the logical direction unchanged.
	assert.Equal(t, Input, line.Direction())
}

func TestCloseReleasesAndClosesPin(t *testing.T) {
	line, pin := newLine(t, High)
	require.NoError(t, line.DriveLow())

	require.NoError(t, line.Close())
	assert.True(t, pin.Closed)
	assert.Equal(t, Input, pin.Mode)
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend("cdev")
	require.NoError(t, err)
	assert.Equal(t, BackendCdev, b)

	b, err = ParseBackend("rpio")
	require.NoError(t, err)
	assert.Equal(t, BackendRpio, b)

	_, err = ParseBackend("sysfs")
	assert.Error(t, err)
}
