// Package panel runs the alarm panel.
//
// Panel owns the state machine and drives it from a ticker: each tick reads
// the sensors, takes at most one queued key press and reports feedback,
// trigger persistence and state transitions. Run wires the panel to its
// configuration, the gRPC and REST transports and the optional console.
package panel
