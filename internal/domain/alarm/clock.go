package alarm

import "time"

// Clock supplies the current instant for lockout timing.
// Implementations must be monotonic.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now, which carries a monotonic clock reading.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
