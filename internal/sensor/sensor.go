package sensor

import (
	"context"

	"github.com/oshokin/alarm-panel/internal/domain/alarm"
)

// Reading is one sample of every hazard sensor.
type Reading struct {
	alarm.SensorSnapshot

	// TemperatureC is the averaged temperature in °C, valid when HasTemperature is set.
	TemperatureC float64
	// HasTemperature is set by drivers that measure the temperature itself
	// rather than a comparator output.
	HasTemperature bool
}

// Source produces a Reading once per polling tick.
type Source interface {
	Read(ctx context.Context) (Reading, error)
}
