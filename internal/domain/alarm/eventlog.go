package alarm

import "time"

// DefaultEventLogCapacity is the number of trigger timestamps kept in memory.
const DefaultEventLogCapacity = 5

// EventLog is a bounded FIFO of trigger timestamps.
// When full, recording a new entry drops the oldest one.
type EventLog struct {
	// entries holds timestamps oldest first.
	entries []time.Time
	// capacity is the maximum number of entries.
	capacity int
}

// NewEventLog creates an empty log. Non-positive capacities fall back to
// DefaultEventLogCapacity.
func NewEventLog(capacity int) *EventLog {
	if capacity <= 0 {
		capacity = DefaultEventLogCapacity
	}

	return &EventLog{
		entries:  make([]time.Time, 0, capacity),
		capacity: capacity,
	}
}

// Record appends a timestamp, shifting out the oldest entry when full.
func (l *EventLog) Record(ts time.Time) {
	if len(l.entries) == l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:l.capacity-1]
	}

	l.entries = append(l.entries, ts)
}

// Entries returns a copy of the timestamps, oldest first.
func (l *EventLog) Entries() []time.Time {
	out := make([]time.Time, len(l.entries))
	copy(out, l.entries)

	return out
}

// Len returns the number of stored entries.
func (l *EventLog) Len() int {
	return len(l.entries)
}

// Cap returns the log capacity.
func (l *EventLog) Cap() int {
	return l.capacity
}
