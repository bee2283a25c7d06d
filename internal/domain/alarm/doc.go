// Package alarm contains the alarm panel state machine.
//
// A Machine consumes one SensorSnapshot and at most one KeyEvent per tick and
// returns an Output record for the LED, display and serial collaborators.
// It owns the code entry buffer, the incorrect attempt counter, the lockout
// clock and the bounded trigger log. The package performs no I/O and never
// blocks; time comes from an injected Clock.
package alarm
