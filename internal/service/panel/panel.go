package panel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oshokin/alarm-panel/internal/domain/alarm"
	"github.com/oshokin/alarm-panel/internal/keypad"
	"github.com/oshokin/alarm-panel/internal/logger"
	"github.com/oshokin/alarm-panel/internal/report"
	"github.com/oshokin/alarm-panel/internal/repository/eventlog"
	"github.com/oshokin/alarm-panel/internal/sensor"
)

// Params wires the panel collaborators.
type Params struct {
	// Machine is the alarm state machine; the panel becomes its only user.
	Machine *alarm.Machine
	// Source supplies hazard readings.
	Source sensor.Source
	// Queue buffers key presses; a default queue is created when nil.
	Queue *keypad.Queue
	// Repository persists triggers; nil keeps the log in memory only.
	Repository eventlog.Repository
	// Output receives feedback messages and screens; nil discards them.
	Output io.Writer
}

// Panel drives the state machine from the sensors and the keypad.
// All machine access is serialised behind mu.
type Panel struct {
	// machine is the alarm state machine.
	machine *alarm.Machine
	// source supplies hazard readings.
	source sensor.Source
	// queue buffers key presses between ticks.
	queue *keypad.Queue
	// repo persists triggers, may be nil.
	repo eventlog.Repository
	// out receives feedback and screens.
	out io.Writer

	// mu protects machine and reading.
	mu sync.Mutex
	// reading is the last good sensor reading.
	reading sensor.Reading
}

// New creates a panel from its collaborators.
func New(params Params) *Panel {
	queue := params.Queue
	if queue == nil {
		queue = keypad.NewQueue(keypad.DefaultQueueSize)
	}

	out := params.Output
	if out == nil {
		out = io.Discard
	}

	return &Panel{
		machine: params.Machine,
		source:  params.Source,
		queue:   queue,
		repo:    params.Repository,
		out:     out,
	}
}

// SetOutput replaces the feedback writer. It must be called before Loop starts.
func (p *Panel) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}

	p.out = w
}

// Restore seeds the in-memory trigger log from the repository.
func (p *Panel) Restore(ctx context.Context) error {
	capacity := p.machine.Settings().EventLogCapacity
	if p.repo == nil || capacity == 0 {
		return nil
	}

	records, err := p.repo.Load(ctx, capacity)
	switch {
	case err == nil:
	case errors.Is(err, eventlog.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("load event log: %w", err)
	}

	p.mu.Lock()
	p.machine.RestoreEventLog(eventlog.Timestamps(records))
	p.mu.Unlock()

	logger.InfoKV(ctx, "Event log restored", "entries", len(records))

	return nil
}

// Step performs one polling iteration: read the sensors, take at most one
// key press, advance the machine and report what happened.
func (p *Panel) Step(ctx context.Context) alarm.Output {
	reading, readErr := p.source.Read(ctx)

	p.mu.Lock()

	if readErr != nil {
		reading = p.reading
	} else {
		p.reading = reading
	}

	var (
		event    = p.queue.Next()
		previous = p.machine.State()
		out      = p.machine.Tick(reading.SensorSnapshot, event)
		entries  []time.Time
	)

	if out.ShowLog {
		entries = p.machine.EventLog()
	}

	p.mu.Unlock()

	if readErr != nil {
		logger.WarnKV(ctx, "Sensor read failed, keeping last reading", "error", readErr)
	}

	p.logTransition(ctx, previous, out)
	p.persistTrigger(ctx, out)
	p.write(report.Feedback(out))

	if out.ShowLog {
		p.write(report.FormatLog(entries))
	}

	return out
}

// Loop ticks the panel every poll interval and renders the status screen
// every display interval until ctx is done. A non-positive display interval
// disables the screen.
func (p *Panel) Loop(ctx context.Context, poll, display time.Duration) {
	pollTicker := time.NewTicker(poll)
	defer pollTicker.Stop()

	var displayC <-chan time.Time

	if display > 0 {
		displayTicker := time.NewTicker(display)
		defer displayTicker.Stop()

		displayC = displayTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-pollTicker.C:
			p.Step(ctx)
		case <-displayC:
			p.write(p.Screen())
		}
	}
}

// Status returns the machine output as of now.
func (p *Panel) Status() alarm.Output {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.machine.Status()
}

// Reading returns the last good sensor reading.
func (p *Panel) Reading() sensor.Reading {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.reading
}

// EventLog returns the trigger timestamps oldest first.
func (p *Panel) EventLog() []time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.machine.EventLog()
}

// Screen renders the status display.
func (p *Panel) Screen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return report.Screen(p.machine.Status(), p.reading)
}

// PressKeys queues a key sequence such as "1805#" and returns the number of
// queued events. Nothing is queued when any character is invalid.
func (p *Panel) PressKeys(ctx context.Context, keys string) (int, error) {
	events, err := keypad.Parse(keys)
	if err != nil {
		return 0, err
	}

	if err = p.queue.Push(events...); err != nil {
		return 0, err
	}

	logger.DebugKV(ctx, "Keys queued", "count", len(events))

	return len(events), nil
}

// SetHazards applies simulated hazards when the sensor driver supports it.
func (p *Panel) SetHazards(ctx context.Context, override sensor.Override) error {
	simulator, ok := p.source.(sensor.Simulator)
	if !ok {
		return sensor.ErrSimulationUnsupported
	}

	simulator.Apply(override)

	logger.InfoKV(ctx, "Simulated hazards applied",
		"gas", override.Gas != nil && *override.Gas,
		"temperature_set", override.TemperatureC != nil)

	return nil
}

func (p *Panel) logTransition(ctx context.Context, previous alarm.State, out alarm.Output) {
	if out.State != previous {
		logger.InfoKV(ctx, "Alarm state changed", "from", previous.String(), "to", out.State.String())
	}

	switch {
	case out.Accepted:
		logger.Info(ctx, "Correct code entered, alarm deactivated")
	case out.Rejected && out.State == alarm.StateLocked:
		logger.WarnKV(ctx, "Incorrect code entered, panel locked",
			"attempts", out.Attempts, "lockout", out.LockoutRemaining.String())
	case out.Rejected:
		logger.WarnKV(ctx, "Incorrect code entered", "attempts", out.Attempts)
	case out.Unlocked:
		logger.Info(ctx, "Lockout expired")
	}
}

func (p *Panel) persistTrigger(ctx context.Context, out alarm.Output) {
	if out.TriggeredAt.IsZero() {
		return
	}

	logger.WarnKV(ctx, "Alarm triggered", "state", out.State.String(), "at", out.TriggeredAt)

	if p.repo == nil || p.machine.Settings().EventLogCapacity == 0 {
		return
	}

	if err := p.repo.Append(ctx, eventlog.NewRecord(out.TriggeredAt, out.State)); err != nil {
		logger.ErrorKV(ctx, "Failed to persist alarm trigger", "error", err)
	}
}

func (p *Panel) write(lines []string) {
	if len(lines) == 0 {
		return
	}

	_, _ = io.WriteString(p.out, report.Join(lines))
}
