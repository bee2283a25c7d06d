package keypad

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/oshokin/alarm-panel/internal/config"
	keys "github.com/oshokin/alarm-panel/internal/keypad"
	"github.com/oshokin/alarm-panel/internal/logger"
	"github.com/oshokin/alarm-panel/internal/report"
	"github.com/oshokin/alarm-panel/internal/sensor"
	"github.com/oshokin/alarm-panel/internal/service/common"
)

// Options configures how the keypad client reaches the panel.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// Output receives the command results; stdout when nil.
	Output io.Writer
}

// DefaultWatchInterval defines the status polling interval of Watch.
const DefaultWatchInterval = time.Second

// errNoHazards is returned when Simulate gets neither gas nor temperature.
var errNoHazards = errors.New("at least one of gas or temperature must be set")

// Status prints the panel status fields.
func Status(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "alarm-keypad")

	return withClient(ctx, opts, func(client *common.Client) error {
		fields, err := client.GetStatus(ctx)
		if err != nil {
			return err
		}

		return write(opts, formatFields(fields))
	})
}

// Press sends a key sequence such as "1805#" to the panel.
// The sequence is validated locally before anything is sent.
func Press(ctx context.Context, opts *Options, sequence string) error {
	ctx = logger.WithName(ctx, "alarm-keypad")

	if _, err := keys.Parse(sequence); err != nil {
		return err
	}

	return withClient(ctx, opts, func(client *common.Client) error {
		queued, err := client.PressKeys(ctx, sequence)
		if err != nil {
			return err
		}

		logger.InfoKV(ctx, "Keys sent", "queued", queued)

		return write(opts, []string{fmt.Sprintf("%d key(s) queued", queued)})
	})
}

// Log prints the trigger log in local time.
func Log(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "alarm-keypad")

	return withClient(ctx, opts, func(client *common.Client) error {
		entries, err := client.GetEventLog(ctx)
		if err != nil {
			return err
		}

		for i := range entries {
			entries[i] = entries[i].Local()
		}

		return write(opts, report.FormatLog(entries))
	})
}

// Simulate sets hazards on a panel running the manual sensor driver.
func Simulate(ctx context.Context, opts *Options, override sensor.Override) error {
	ctx = logger.WithName(ctx, "alarm-keypad")

	if override.Gas == nil && override.TemperatureC == nil {
		return errNoHazards
	}

	return withClient(ctx, opts, func(client *common.Client) error {
		fields, err := client.SetHazards(ctx, override)
		if err != nil {
			return err
		}

		return write(opts, formatFields(fields))
	})
}

// Watch polls the panel status and logs every state change until ctx is done.
func Watch(ctx context.Context, opts *Options, interval time.Duration) error {
	ctx = logger.WithName(ctx, "alarm-keypad")

	if interval <= 0 {
		interval = DefaultWatchInterval
	}

	return withClient(ctx, opts, func(client *common.Client) error {
		logger.InfoKV(ctx, "Watching panel state", "interval", interval.String())

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var lastState string

		for {
			select {
			case <-ctx.Done():
				logger.Info(ctx, "Context canceled, exiting")

				return nil
			case <-ticker.C:
				fields, err := client.GetStatus(ctx)
				if err != nil {
					logger.ErrorKV(ctx, "Get status failed", "error", err)

					continue
				}

				state, _ := fields["state"].(string)
				if state == lastState {
					continue
				}

				lastState = state

				if err = write(opts, []string{time.Now().Format(report.LogTimeLayout) + " " + state}); err != nil {
					return err
				}
			}
		}
	})
}

// withClient loads settings, dials the panel and runs fn with the client.
func withClient(ctx context.Context, opts *Options, fn func(*common.Client) error) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	actor, err := common.DetectActor()
	if err != nil {
		return fmt.Errorf("detect actor: %w", err)
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout), common.WithActor(actor))
	if err != nil {
		return fmt.Errorf("dial panel: %w", err)
	}

	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Connected to panel", "server_address", serverAddress, "actor", actor.String())

	return fn(client)
}

// formatFields renders status fields as sorted "name: value" lines.
func formatFields(fields map[string]any) []string {
	lines := make([]string, 0, len(fields))

	for _, name := range slices.Sorted(maps.Keys(fields)) {
		lines = append(lines, fmt.Sprintf("%s: %v", name, fields[name]))
	}

	return lines
}

func write(opts *Options, lines []string) error {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	if _, err := io.WriteString(out, report.Join(lines)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}
