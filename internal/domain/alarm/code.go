package alarm

import (
	"errors"
	"fmt"
	"strings"
)

// CodeLength is the number of symbols in a deactivation code.
const CodeLength = 4

var (
	// ErrInvalidCode is returned when a reference code cannot be parsed.
	ErrInvalidCode = errors.New("invalid code")
	// errCodeLength is wrapped into ErrInvalidCode for codes of the wrong length.
	errCodeLength = fmt.Errorf("code must have exactly %d symbols", CodeLength)
)

// IsSymbol reports whether r can be part of a code.
// Symbols are the keypad digits and the A-D keys.
func IsSymbol(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'A' && r <= 'D')
}

// Code is the reference deactivation code.
type Code []rune

// ParseCode parses a code written as "1805" or "1,8,0,5".
// Spaces and commas are ignored and letters are upper-cased.
func ParseCode(s string) (Code, error) {
	code := make(Code, 0, CodeLength)

	for _, r := range strings.ToUpper(s) {
		if r == ',' || r == ' ' {
			continue
		}

		if !IsSymbol(r) {
			return nil, fmt.Errorf("%w: unexpected symbol %q", ErrInvalidCode, r)
		}

		code = append(code, r)
	}

	if len(code) != CodeLength {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCode, errCodeLength)
	}

	return code, nil
}

// MustParseCode is like ParseCode but panics on error.
func MustParseCode(s string) Code {
	code, err := ParseCode(s)
	if err != nil {
		panic(err)
	}

	return code
}

// Matches compares the entered symbols with the reference code.
// There is no partial credit: any length or symbol difference is a mismatch.
func (c Code) Matches(entered []rune) bool {
	if len(entered) != len(c) {
		return false
	}

	for i := range c {
		if entered[i] != c[i] {
			return false
		}
	}

	return true
}

// String returns the code as a plain symbol string.
func (c Code) String() string {
	return string(c)
}

// CodeBuffer collects entered symbols up to a fixed capacity.
// Symbols beyond the capacity are rejected, never overwritten.
type CodeBuffer struct {
	// symbols holds the entered symbols in order.
	symbols []rune
	// capacity is the maximum number of symbols.
	capacity int
}

// NewCodeBuffer creates an empty buffer holding at most capacity symbols.
func NewCodeBuffer(capacity int) *CodeBuffer {
	if capacity <= 0 {
		capacity = CodeLength
	}

	return &CodeBuffer{
		symbols:  make([]rune, 0, capacity),
		capacity: capacity,
	}
}

// Append adds a symbol and reports whether it was stored.
func (b *CodeBuffer) Append(symbol rune) bool {
	if b.Full() {
		return false
	}

	b.symbols = append(b.symbols, symbol)

	return true
}

// Full reports whether the buffer reached its capacity.
func (b *CodeBuffer) Full() bool {
	return len(b.symbols) >= b.capacity
}

// Len returns the number of entered symbols.
func (b *CodeBuffer) Len() int {
	return len(b.symbols)
}

// Cap returns the buffer capacity.
func (b *CodeBuffer) Cap() int {
	return b.capacity
}

// Symbols returns a copy of the entered symbols.
func (b *CodeBuffer) Symbols() []rune {
	out := make([]rune, len(b.symbols))
	copy(out, b.symbols)

	return out
}

// Reset discards all entered symbols.
func (b *CodeBuffer) Reset() {
	b.symbols = b.symbols[:0]
}
