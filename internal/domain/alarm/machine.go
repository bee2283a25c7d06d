package alarm

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultAttemptThreshold is the number of wrong codes that locks the panel.
	DefaultAttemptThreshold = 5
	// DefaultLockoutDuration is how long the panel stays locked.
	DefaultLockoutDuration = 60 * time.Second
	// DefaultCode is the factory deactivation code.
	DefaultCode = "1805"
)

var (
	// ErrInvalidThreshold is returned when the attempt threshold is not positive.
	ErrInvalidThreshold = errors.New("attempt threshold must be positive")
	// ErrInvalidLockout is returned when the lockout duration is not positive.
	ErrInvalidLockout = errors.New("lockout duration must be positive")
	// ErrInvalidLogCapacity is returned when the event log capacity is negative.
	ErrInvalidLogCapacity = errors.New("event log capacity must not be negative")
)

// Settings are the build-time parameters of a Machine.
type Settings struct {
	// Code is the reference deactivation code.
	Code Code
	// AttemptThreshold is the number of consecutive wrong codes that locks the panel.
	AttemptThreshold int
	// LockoutDuration is the time code entry stays disabled after a lockout.
	LockoutDuration time.Duration
	// EventLogCapacity is the trigger log size; zero disables the log.
	EventLogCapacity int
}

// DefaultSettings returns the settings used by the lab boards.
func DefaultSettings() Settings {
	return Settings{
		Code:             MustParseCode(DefaultCode),
		AttemptThreshold: DefaultAttemptThreshold,
		LockoutDuration:  DefaultLockoutDuration,
		EventLogCapacity: DefaultEventLogCapacity,
	}
}

// Validate checks the settings.
func (s *Settings) Validate() error {
	if len(s.Code) != CodeLength {
		return fmt.Errorf("%w: %w", ErrInvalidCode, errCodeLength)
	}

	for _, r := range s.Code {
		if !IsSymbol(r) {
			return fmt.Errorf("%w: unexpected symbol %q", ErrInvalidCode, r)
		}
	}

	if s.AttemptThreshold <= 0 {
		return ErrInvalidThreshold
	}

	if s.LockoutDuration <= 0 {
		return ErrInvalidLockout
	}

	if s.EventLogCapacity < 0 {
		return ErrInvalidLogCapacity
	}

	return nil
}

// Output is the per-tick result consumed by the LED, display and serial collaborators.
type Output struct {
	// State is the machine state after the tick.
	State State
	// AlarmLED is on while the alarm is triggered or in emergency.
	AlarmLED bool
	// EmergencyLED is on while in emergency; the renderer flashes it with AlarmLED.
	EmergencyLED bool
	// LockoutBlink is the current phase of the blinking lockout LED.
	LockoutBlink bool
	// IncorrectCodeLED is on while at least one wrong code is on record.
	IncorrectCodeLED bool
	// BufferLength is the number of symbols entered so far.
	BufferLength int
	// Attempts is the current incorrect attempt count.
	Attempts int
	// LockoutElapsed is the time spent locked so far.
	LockoutElapsed time.Duration
	// LockoutRemaining is the time left until the lockout expires.
	LockoutRemaining time.Duration
	// Accepted is set on the tick a correct code deactivated the alarm.
	Accepted bool
	// Rejected is set on the tick a complete wrong code was submitted.
	Rejected bool
	// Unlocked is set on the tick the lockout expired.
	Unlocked bool
	// ShowLog asks the display to render the trigger log.
	ShowLog bool
	// TriggeredAt is the trigger timestamp recorded on this tick, or zero.
	TriggeredAt time.Time
}

// Machine is the alarm state machine. It is not safe for concurrent use;
// the owner serialises calls to Tick.
type Machine struct {
	// settings are the validated machine parameters.
	settings Settings
	// clock supplies monotonic time for the lockout.
	clock Clock

	// state is the active state.
	state State
	// buffer holds the code being entered.
	buffer *CodeBuffer
	// attempts counts consecutive wrong codes.
	attempts int
	// lockedAt is the instant the lockout started.
	lockedAt time.Time
	// blink is the lockout LED phase.
	blink bool
	// log keeps trigger timestamps; nil when disabled.
	log *EventLog
}

// NewMachine creates an idle machine. A nil clock uses SystemClock.
func NewMachine(settings Settings, clock Clock) (*Machine, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if clock == nil {
		clock = SystemClock{}
	}

	code := make(Code, len(settings.Code))
	copy(code, settings.Code)
	settings.Code = code

	m := &Machine{
		settings: settings,
		clock:    clock,
		state:    StateIdle,
		buffer:   NewCodeBuffer(len(code)),
	}

	if settings.EventLogCapacity > 0 {
		m.log = NewEventLog(settings.EventLogCapacity)
	}

	return m, nil
}

// Settings returns the machine parameters.
func (m *Machine) Settings() Settings {
	return m.settings
}

// State returns the active state.
func (m *Machine) State() State {
	return m.state
}

// Attempts returns the incorrect attempt count.
func (m *Machine) Attempts() int {
	return m.attempts
}

// Tick advances the machine by one polling step.
func (m *Machine) Tick(snapshot SensorSnapshot, event KeyEvent) Output {
	var (
		now = m.clock.Now()
		out = Output{
			ShowLog: event.Kind == KeyShowLog && m.log != nil,
		}
	)

	if m.state == StateLocked {
		if m.lockoutElapsed(now) >= m.settings.LockoutDuration {
			m.reset()
			out.Unlocked = true
		} else {
			m.blink = !m.blink
		}

		return m.fill(now, out)
	}

	if m.applyHazards(snapshot) {
		out.TriggeredAt = now

		if m.log != nil {
			m.log.Record(now)
		}
	}

	if m.state.IsAlarmed() {
		m.handleKey(now, event, &out)
	}

	return m.fill(now, out)
}

// Status returns the current output without advancing the machine.
func (m *Machine) Status() Output {
	return m.fill(m.clock.Now(), Output{})
}

// EventLog returns the recorded trigger timestamps, oldest first.
// It returns nil when the log is disabled.
func (m *Machine) EventLog() []time.Time {
	if m.log == nil {
		return nil
	}

	return m.log.Entries()
}

// RestoreEventLog replays previously persisted trigger timestamps.
// Only the newest entries that fit the log capacity are kept.
func (m *Machine) RestoreEventLog(entries []time.Time) {
	if m.log == nil {
		return
	}

	for _, ts := range entries {
		m.log.Record(ts)
	}
}

// applyHazards raises the alarm level and reports whether the alarm was
// triggered from idle on this tick.
func (m *Machine) applyHazards(snapshot SensorSnapshot) bool {
	wasIdle := m.state == StateIdle

	switch snapshot.Hazards() {
	case 0:
		return false
	case 1:
		if wasIdle {
			m.state = StateTriggered
		}
	default:
		m.state = StateEmergency
	}

	return wasIdle
}

// handleKey processes code entry while the alarm is active.
func (m *Machine) handleKey(now time.Time, event KeyEvent, out *Output) {
	switch event.Kind {
	case KeySymbol:
		if IsSymbol(event.Symbol) {
			m.buffer.Append(event.Symbol)
		}
	case KeySubmit:
		// A partial code is ignored without penalty.
		if !m.buffer.Full() {
			return
		}

		if m.settings.Code.Matches(m.buffer.Symbols()) {
			m.reset()
			out.Accepted = true

			return
		}

		m.buffer.Reset()
		m.attempts++
		out.Rejected = true

		if m.attempts >= m.settings.AttemptThreshold {
			m.state = StateLocked
			m.lockedAt = now
			m.blink = true
		}
	case KeyNone, KeyShowLog:
	}
}

// reset returns the machine to idle and clears all bookkeeping except the log.
func (m *Machine) reset() {
	m.state = StateIdle
	m.buffer.Reset()
	m.attempts = 0
	m.lockedAt = time.Time{}
	m.blink = false
}

// lockoutElapsed returns the non-negative time spent locked.
func (m *Machine) lockoutElapsed(now time.Time) time.Duration {
	elapsed := now.Sub(m.lockedAt)
	if elapsed < 0 {
		return 0
	}

	return elapsed
}

// fill completes out with the fields derived from the machine state.
func (m *Machine) fill(now time.Time, out Output) Output {
	out.State = m.state
	out.AlarmLED = m.state.IsAlarmed()
	out.EmergencyLED = m.state == StateEmergency
	out.LockoutBlink = m.state == StateLocked && m.blink
	out.IncorrectCodeLED = m.attempts > 0
	out.BufferLength = m.buffer.Len()
	out.Attempts = m.attempts

	if m.state == StateLocked {
		out.LockoutElapsed = m.lockoutElapsed(now)
		out.LockoutRemaining = max(m.settings.LockoutDuration-out.LockoutElapsed, 0)
	}

	return out
}
