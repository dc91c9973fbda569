package dht

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTimingIsValid(t *testing.T) {
	for _, m := range []Model{DHT11, DHT22} {
		require.NoError(t, DefaultTiming(m).Validate(), m.String())
	}
}

func TestDefaultTimingPerModel(t *testing.T) {
	assert.Equal(t, 18*time.Millisecond, DefaultTiming(DHT11).StartLow)
	assert.Equal(t, time.Millisecond, DefaultTiming(DHT22).StartLow)
	assert.Equal(t, 2*time.Second, DefaultTiming(DHT22).MinInterval)

	// The threshold sits between the nominal 0 and 1 pulse widths.
	th := DefaultTiming(DHT11).BitThreshold
	w := NominalWidths()
	assert.Greater(t, th, w.Zero)
	assert.Less(t, th, w.One)
}

func TestTimingValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Timing)
	}{
		{"zero start", func(t *Timing) { t.StartLow = 0 }},
		{"negative threshold", func(t *Timing) { t.BitThreshold = -time.Microsecond }},
		{"threshold above high timeout", func(t *Timing) { t.BitThreshold = 120 * time.Microsecond }},
		{"settle longer than response window", func(t *Timing) { t.ReleaseSettle = t.ResponseTimeout }},
		{"zero min interval", func(t *Timing) { t.MinInterval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timing := DefaultTiming(DHT11)
			tt.mutate(&timing)
			assert.Error(t, timing.Validate())
		})
	}
}

func TestParseModel(t *testing.T) {
	for in, want := range map[string]Model{"dht11": DHT11, "DHT22": DHT22, "am2302": DHT22} {
		m, err := ParseModel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, m)
	}
	_, err := ParseModel("ds18b20")
	assert.Error(t, err)
}
