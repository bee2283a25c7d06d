// Package config defines the alarm panel settings and provides helpers to
// load, validate and save them in YAML format.
//
// Validate fills in the lab defaults: code 1805, five attempts, a 60 second
// lockout and a 100 ms polling cadence.
package config
