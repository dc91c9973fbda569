package logic

import "time"

// Controller turns read outcomes into valve decisions.
type Controller struct {
	policy        Policy
	valveOpen     bool
	openedAt      time.Time
	closedAt      time.Time
	everClosed    bool
	startTime     time.Time
	counts        Counts
	lastHeartbeat time.Time
}

// NewController creates a controller with the valve closed.
// The startTime is used for calculating uptime in heartbeat events.
func NewController(policy Policy, startTime time.Time) *Controller {
	return &Controller{
		policy:        policy,
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Process takes the outcome of one read and returns the events it caused,
// in order. The valve state after the last event is ValveOpen().
func (c *Controller) Process(in Input) []Event {
	var events []Event

	// Closing is time-driven and must happen even when the read failed.
	if c.valveOpen && in.Time.Sub(c.openedAt) >= c.policy.WaterFor {
		c.close(in.Time)
		events = append(events, Event{Timestamp: in.Time, Type: EventValveClose})
	}

	if in.Err != nil {
		// No reading this cycle: skip the decision, act on nothing stale.
		c.counts.ReadErrors++
		events = append(events, Event{
			Timestamp: in.Time,
			Type:      EventReadError,
			Error:     in.Err.Error(),
			ErrorKind: in.ErrKind,
			ValveOpen: c.valveOpen,
		})
		return events
	}

	c.counts.Readings++
	r := in.Reading
	events = append(events, Event{
		Timestamp: in.Time,
		Type:      EventReading,
		Reading:   &r,
		ValveOpen: c.valveOpen,
	})

	if !c.valveOpen && c.policy.ShouldWater(r) && c.cooledDown(in.Time) {
		c.valveOpen = true
		c.openedAt = in.Time
		c.counts.Waterings++
		events = append(events, Event{
			Timestamp: in.Time,
			Type:      EventValveOpen,
			Reading:   &r,
			ValveOpen: true,
		})
	}

	return events
}

func (c *Controller) cooledDown(now time.Time) bool {
	if !c.everClosed {
		return true
	}
	return now.Sub(c.closedAt) >= c.policy.Cooldown
}

func (c *Controller) close(now time.Time) {
	c.valveOpen = false
	c.closedAt = now
	c.everClosed = true
}

// ForceClose closes the valve outside the normal schedule, e.g. on
// shutdown. It returns the close event,
// or nil if the valve was already closed.
func (c *Controller) ForceClose(now time.Time) *Event {
	if !c.valveOpen {
		return nil
	}
	c.close(now)
	return &Event{Timestamp: now, Type: EventValveClose}
}

// AbortOpen withdraws a watering the valve could not start: it closes the
// valve and takes the watering back out of the counts. The cooldown still
// runs from now, so a stuck relay is retried at most once per cooldown.
// It returns nil if the valve is not open.
func (c *Controller) AbortOpen(now time.Time) *Event {
	ev := c.ForceClose(now)
	if ev != nil && c.counts.Waterings > 0 {
		c.counts.Waterings--
	}
	return ev
}

// ValveOpen returns whether the valve should currently be open.
func (c *Controller) ValveOpen() bool {
	return c.valveOpen
}

// Counts returns a copy of the cycle counters.
func (c *Controller) Counts() Counts {
	return c.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (c *Controller) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(c.lastHeartbeat) < interval {
		return nil
	}

	c.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(c.startTime),
		Counts:    c.counts,
	}
}
