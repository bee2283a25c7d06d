package keypad

import (
	"errors"
	"sync"

	"github.com/oshokin/alarm-panel/internal/domain/alarm"
)

// DefaultQueueSize is enough for a full code, a submit and some slack.
const DefaultQueueSize = 32

// ErrQueueFull is returned when key events arrive faster than ticks consume them.
var ErrQueueFull = errors.New("key queue is full")

// Queue buffers key events between the input sources and the polling loop.
// The loop takes at most one event per tick, so a typed code is applied one
// symbol per tick in order.
type Queue struct {
	// mu protects events.
	mu sync.Mutex
	// events holds pending events oldest first.
	events []alarm.KeyEvent
	// size is the maximum number of pending events.
	size int
}

// NewQueue creates a queue holding at most size events.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}

	return &Queue{
		events: make([]alarm.KeyEvent, 0, size),
		size:   size,
	}
}

// Push appends events atomically: either all of them fit or none is queued.
func (q *Queue) Push(events ...alarm.KeyEvent) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events)+len(events) > q.size {
		return ErrQueueFull
	}

	q.events = append(q.events, events...)

	return nil
}

// Next pops the oldest event. The zero KeyEvent is returned when empty.
func (q *Queue) Next() alarm.KeyEvent {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return alarm.KeyEvent{}
	}

	event := q.events[0]
	q.events = append(q.events[:0], q.events[1:]...)

	return event
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.events)
}
