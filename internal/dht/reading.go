package dht

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// Reading is a validated measurement. A Reading only exists for a frame
// whose checksum matched.
type Reading struct {
	Temperature float64 // °C
	Humidity    float64 // %RH
}

// Env converts the reading to periph physical units.
func (r Reading) Env() physic.Env {
	return physic.Env{
		Temperature: physic.ZeroCelsius + physic.Temperature(r.Temperature*float64(physic.Celsius)),
		Humidity:    physic.RelativeHumidity(r.Humidity * float64(physic.PercentRH)),
	}
}

func (r Reading) String() string {
	return fmt.Sprintf("%.1f°C %.1f%%RH", r.Temperature, r.Humidity)
}
