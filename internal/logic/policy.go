package logic

import (
	"errors"
	"fmt"
	"time"
)

// Policy decides when and how long to water.
type Policy struct {
	// MaxHumidity: water only while humidity is below this (%RH).
	MaxHumidity float64
	// MinTemperature: never water at or below this (°C), e.g. frost.
	MinTemperature float64
	// WaterFor is how long the valve stays open per watering.
	WaterFor time.Duration
	// Cooldown is the minimum time from closing the valve to opening it
	// again.
	Cooldown time.Duration
}

// DefaultPolicy returns conservative garden defaults.
func DefaultPolicy() Policy {
	return Policy{
		MaxHumidity:    40,
		MinTemperature: 4,
		WaterFor:       30 * time.Second,
		Cooldown:       30 * time.Minute,
	}
}

// Validate reports whether the policy is usable.
func (p Policy) Validate() error {
	if p.MaxHumidity <= 0 || p.MaxHumidity > 100 {
		return fmt.Errorf("max humidity %.1f must be in (0, 100]", p.MaxHumidity)
	}
	if p.WaterFor <= 0 {
		return errors.New("watering duration must be positive")
	}
	if p.Cooldown < 0 {
		return errors.New("cooldown must not be negative")
	}
	return nil
}

// ShouldWater reports whether conditions warrant watering.
func (p Policy) ShouldWater(r Reading) bool {
	return r.Humidity < p.MaxHumidity && r.Temperature > p.MinTemperature
}
