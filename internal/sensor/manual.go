package sensor

import (
	"context"
	"errors"
	"math"
	"sync"
)

var (
	// ErrSimulationUnsupported is returned when hazards are simulated on a source
	// that reads real hardware.
	ErrSimulationUnsupported = errors.New("sensor driver does not accept simulated hazards")
	// ErrInvalidTemperature is returned for NaN or infinite simulated temperatures.
	ErrInvalidTemperature = errors.New("temperature must be a finite number")
)

// Manual is an in-memory sensor for bench use. The gas flag and the
// temperature are set through the panel API; every Read feeds the current
// temperature into the moving average, like the LM35 sampling loop.
type Manual struct {
	// mu protects all fields below.
	mu sync.Mutex
	// gas is the current gas detector state.
	gas bool
	// temperature is the latest raw temperature in °C.
	temperature float64
	// hasTemperature is set once a temperature was provided.
	hasTemperature bool
	// threshold is the over-temperature limit in °C.
	threshold float64
	// averager smooths the temperature samples.
	averager *Averager
}

// NewManual creates a manual sensor with the given limit and average window.
func NewManual(threshold float64, window int) *Manual {
	return &Manual{
		threshold: threshold,
		averager:  NewAverager(window),
	}
}

// SetGas sets the gas detector state.
func (m *Manual) SetGas(detected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gas = detected
}

// SetTemperature sets the raw temperature in °C.
func (m *Manual) SetTemperature(celsius float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.temperature = celsius
	m.hasTemperature = true
}

// SetAnalog sets the temperature from a normalised LM35 ADC reading.
func (m *Manual) SetAnalog(analog float64) {
	m.SetTemperature(LM35Celsius(analog))
}

// Read samples the current values.
func (m *Manual) Read(_ context.Context) (Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reading := Reading{}
	reading.GasDetected = m.gas

	if m.hasTemperature {
		reading.HasTemperature = true
		reading.TemperatureC = m.averager.Add(m.temperature)
		reading.OverTemperature = reading.TemperatureC > m.threshold
	}

	return reading, nil
}

// Override carries simulated hazard values; nil fields are left unchanged.
type Override struct {
	// Gas sets the gas detector state.
	Gas *bool
	// TemperatureC sets the raw temperature in °C.
	TemperatureC *float64
}

// Validate rejects values the moving average cannot absorb.
func (o Override) Validate() error {
	if o.TemperatureC != nil && (math.IsNaN(*o.TemperatureC) || math.IsInf(*o.TemperatureC, 0)) {
		return ErrInvalidTemperature
	}

	return nil
}

// Simulator is a source whose hazards can be set remotely.
type Simulator interface {
	Source
	// Apply sets the provided hazard values.
	Apply(override Override)
}

// Apply sets the provided hazard values.
func (m *Manual) Apply(override Override) {
	if override.Gas != nil {
		m.SetGas(*override.Gas)
	}

	if override.TemperatureC != nil {
		m.SetTemperature(*override.TemperatureC)
	}
}
