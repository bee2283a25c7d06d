// Package keypad implements the remote keypad client commands.
//
// Each command loads the shared settings, dials the panel over gRPC and
// prints the answer in the same text the panel shows on its own terminal.
package keypad
