// Package logger wraps zap for the alarm panel binaries:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and a shared atomic level,
//   - Redirect for writing through the interactive keypad console.
//
// Services take a context and log through the logger stored in it, so every
// line carries the component name.
package logger
