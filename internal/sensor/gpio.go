package sensor

import (
	"context"
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// ErrPinNotFound is returned when a configured GPIO name is not registered.
var ErrPinNotFound = errors.New("gpio pin not found")

// inputPin is the part of gpio.PinIO the sensor needs.
type inputPin interface {
	Name() string
	In(pull gpio.Pull, edge gpio.Edge) error
	Read() gpio.Level
}

// GPIO reads the hazard flags from digital inputs.
// The gas detector output is active low; the over-temperature comparator
// output is active high and pulled down.
type GPIO struct {
	// gas is the MQ-2 digital output.
	gas inputPin
	// overTemp is the temperature comparator output.
	overTemp inputPin
}

// NewGPIO initialises the periph host drivers and configures both pins.
// Pin names use the periph registry naming, e.g. "GPIO17".
func NewGPIO(gasPin, overTempPin string) (*GPIO, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init gpio host: %w", err)
	}

	gas := gpioreg.ByName(gasPin)
	if gas == nil {
		return nil, fmt.Errorf("%w: %s", ErrPinNotFound, gasPin)
	}

	overTemp := gpioreg.ByName(overTempPin)
	if overTemp == nil {
		return nil, fmt.Errorf("%w: %s", ErrPinNotFound, overTempPin)
	}

	return newGPIO(gas, overTemp)
}

// newGPIO configures the pins as inputs.
func newGPIO(gas, overTemp inputPin) (*GPIO, error) {
	if err := gas.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configure %s: %w", gas.Name(), err)
	}

	if err := overTemp.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configure %s: %w", overTemp.Name(), err)
	}

	return &GPIO{
		gas:      gas,
		overTemp: overTemp,
	}, nil
}

// Read samples both pins.
func (g *GPIO) Read(_ context.Context) (Reading, error) {
	reading := Reading{}
	reading.GasDetected = g.gas.Read() == gpio.Low
	reading.OverTemperature = g.overTemp.Read() == gpio.High

	return reading, nil
}
