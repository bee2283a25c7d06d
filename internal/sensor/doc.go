// Package sensor produces the per-tick hazard readings.
//
// Manual is driven through the panel API and smooths temperatures with the
// LM35 moving average; GPIO reads the detector outputs through periph.io.
package sensor
