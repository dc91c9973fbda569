// Package status provides a thread-safe status tracker for the irrigator daemon.
// It is read by the HTTP handlers and the status line writer.
package status

import (
	"sort"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sweeney/irrigator/internal/logic"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Model          string
	Backend        string
	PinSensor      int
	PinValve       int
	PollMs         int64
	HeartbeatMs    int64
	MaxHumidity    float64
	MinTemperature float64
	WaterForMs     int64
	CooldownMs     int64
	Broker         string
	HTTPPort       string
}

// ErrorCount is the number of failed reads of one kind.
type ErrorCount struct {
	Kind  string
	Count int64
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	LastReading   *logic.Reading
	LastReadingAt time.Time
	LastError     string
	LastErrorKind string
	LastErrorAt   time.Time
	ValveOpen     bool
	Counts        logic.Counts
	ErrorKinds    []ErrorCount // sorted by kind
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Valve returns "OPEN" or "CLOSED".
func (s Snapshot) Valve() string {
	if s.ValveOpen {
		return "OPEN"
	}
	return "CLOSED"
}

// Tracker holds mutable daemon state behind an RWMutex. Error counts per
// kind live in a concurrent map so they can be bumped without the lock.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot

	errorKinds *xsync.MapOf[string, *xsync.Counter]
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		errorKinds: xsync.NewMapOf[string, *xsync.Counter](),
	}
}

// Apply folds the events of one control cycle into the tracker.
// Called from runLoop after every read.
func (t *Tracker) Apply(events []logic.Event, counts logic.Counts) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range events {
		switch e.Type {
		case logic.EventReading:
			r := *e.Reading
			t.snap.LastReading = &r
			t.snap.LastReadingAt = e.Timestamp
		case logic.EventReadError:
			t.snap.LastError = e.Error
			t.snap.LastErrorKind = e.ErrorKind
			t.snap.LastErrorAt = e.Timestamp
			t.countError(e.ErrorKind)
		}
		t.snap.ValveOpen = e.ValveOpen
	}
	t.snap.Counts = counts
}

func (t *Tracker) countError(kind string) {
	if kind == "" {
		kind = "Unknown"
	}
	c, _ := t.errorKinds.LoadOrCompute(kind, func() *xsync.Counter {
		return xsync.NewCounter()
	})
	c.Inc()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()

	var kinds []ErrorCount
	t.errorKinds.Range(func(kind string, c *xsync.Counter) bool {
		kinds = append(kinds, ErrorCount{Kind: kind, Count: c.Value()})
		return true
	})
	sort.Slice(kinds, func(i, j int) bool { return kinds[i].Kind < kinds[j].Kind })
	s.ErrorKinds = kinds

	if s.LastReading != nil {
		r := *s.LastReading
		s.LastReading = &r
	}
	s.Now = time.Now()
	return s
}
