// Package keypad turns keypad characters and console lines into key events
// for the alarm state machine.
package keypad
