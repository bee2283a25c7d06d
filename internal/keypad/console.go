package keypad

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/oshokin/alarm-panel/internal/domain/alarm"
	"github.com/oshokin/alarm-panel/internal/logger"
	"github.com/oshokin/alarm-panel/internal/report"
	"github.com/oshokin/alarm-panel/internal/sensor"
)

// ConsolePrompt is shown before every console line.
const ConsolePrompt = "panel> "

// Panel is the part of the running panel the console talks to.
type Panel interface {
	// PressKeys queues a key sequence and returns how many events were queued.
	PressKeys(ctx context.Context, keys string) (int, error)
	// Status returns the latest machine output.
	Status() alarm.Output
	// Reading returns the latest sensor reading.
	Reading() sensor.Reading
	// EventLog returns the trigger log oldest first.
	EventLog() []time.Time
}

// Console is the interactive serial terminal of the panel.
// Named commands answer queries; any other line is typed on the keypad.
type Console struct {
	// panel receives keys and answers queries.
	panel Panel
	// out receives command responses.
	out io.Writer
	// rl reads lines from the terminal. Nil in tests.
	rl *readline.Instance
}

// NewConsole opens a readline terminal bound to the panel.
func NewConsole(panel Panel) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ConsolePrompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Console{
		panel: panel,
		out:   rl.Stdout(),
		rl:    rl,
	}, nil
}

func newConsole(panel Panel, out io.Writer) *Console {
	return &Console{panel: panel, out: out}
}

// Stdout returns a writer that keeps the prompt intact; route logs through it.
func (c *Console) Stdout() io.Writer {
	return c.out
}

// Close releases the terminal.
func (c *Console) Close() error {
	if c.rl == nil {
		return nil
	}

	return c.rl.Close()
}

// Run reads lines until quit, EOF or context cancellation, then calls cancel.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()

	c.print(report.AvailableCommands())

	for {
		if ctx.Err() != nil {
			return
		}

		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if line == "" {
					return
				}

				continue
			}

			// io.EOF and a closed terminal both end the session.
			return
		}

		if c.Handle(ctx, line) {
			return
		}
	}
}

// Handle executes one console line and reports whether the session should end.
func (c *Console) Handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	switch strings.ToLower(line) {
	case "quit", "exit":
		return true
	case "help":
		c.print(report.AvailableCommands())
	case "alarm":
		c.print([]string{report.AlarmStatus(c.panel.Status())})
	case "lock":
		c.print([]string{report.LockStatus(c.panel.Status())})
	case "sensors":
		c.print(report.SensorReport(c.panel.Reading()))
	case "screen":
		c.print(report.Screen(c.panel.Status(), c.panel.Reading()))
	case "log":
		c.print(report.FormatLog(c.panel.EventLog()))
	default:
		c.press(ctx, line)
	}

	return false
}

func (c *Console) press(ctx context.Context, line string) {
	queued, err := c.panel.PressKeys(ctx, line)
	if err != nil {
		logger.DebugKV(ctx, "Console keys rejected", "line", line, "error", err)
		c.print([]string{"Error: " + err.Error()})

		return
	}

	c.print([]string{fmt.Sprintf("%d key(s) queued", queued)})
}

func (c *Console) print(lines []string) {
	_, _ = io.WriteString(c.out, report.Join(lines))
}
