package alarm

import "fmt"

// KeyKind classifies a key event.
type KeyKind uint8

const (
	// KeyNone means no key was pressed during the tick.
	KeyNone KeyKind = iota
	// KeySymbol carries one code symbol.
	KeySymbol
	// KeySubmit asks the machine to validate the entered code.
	KeySubmit
	// KeyShowLog asks the display to render the trigger log.
	KeyShowLog
)

// KeyEvent is a single input event delivered to Machine.Tick.
// The zero value means no event.
type KeyEvent struct {
	// Kind is the event type.
	Kind KeyKind
	// Symbol is the entered symbol for KeySymbol events.
	Symbol rune
}

// SymbolEntered returns an event carrying a code symbol.
func SymbolEntered(symbol rune) KeyEvent {
	return KeyEvent{Kind: KeySymbol, Symbol: symbol}
}

// SubmitPressed returns a submit event.
func SubmitPressed() KeyEvent {
	return KeyEvent{Kind: KeySubmit}
}

// ShowLogPressed returns a show-log event.
func ShowLogPressed() KeyEvent {
	return KeyEvent{Kind: KeyShowLog}
}

// String returns a short description used in logs.
func (e KeyEvent) String() string {
	switch e.Kind {
	case KeyNone:
		return "none"
	case KeySymbol:
		return fmt.Sprintf("symbol(%c)", e.Symbol)
	case KeySubmit:
		return "submit"
	case KeyShowLog:
		return "show-log"
	default:
		return "unknown"
	}
}
