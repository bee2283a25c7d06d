// Package panel implements the REST status API of the alarm panel on echo.
//
// The trigger log can be exported as JSON or, for compact clients, as
// MessagePack.
package panel
