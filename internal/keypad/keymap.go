package keypad

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/oshokin/alarm-panel/internal/domain/alarm"
)

const (
	// SubmitKey validates the entered code.
	SubmitKey = '#'
	// ShowLogKey renders the trigger log.
	ShowLogKey = '*'
)

// ErrUnknownKey is returned for characters that are not on the keypad.
var ErrUnknownKey = errors.New("unknown key")

// Map converts a keypad character into a key event.
// Digits and A-D are code symbols; lower-case letters are accepted.
func Map(key rune) (alarm.KeyEvent, bool) {
	key = unicode.ToUpper(key)

	switch {
	case key == SubmitKey:
		return alarm.SubmitPressed(), true
	case key == ShowLogKey:
		return alarm.ShowLogPressed(), true
	case alarm.IsSymbol(key):
		return alarm.SymbolEntered(key), true
	default:
		return alarm.KeyEvent{}, false
	}
}

// Parse converts a key sequence such as "1805#" into events.
// Whitespace is skipped; any other unknown character fails the whole sequence.
func Parse(keys string) ([]alarm.KeyEvent, error) {
	events := make([]alarm.KeyEvent, 0, len(keys))

	for _, r := range keys {
		if unicode.IsSpace(r) {
			continue
		}

		event, ok := Map(r)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKey, r)
		}

		events = append(events, event)
	}

	return events, nil
}
