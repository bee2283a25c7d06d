package panel

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"google.golang.org/grpc"

	grpcapi "github.com/oshokin/alarm-panel/internal/api/grpc/panel"
	httpapi "github.com/oshokin/alarm-panel/internal/api/http/panel"
	"github.com/oshokin/alarm-panel/internal/config"
	"github.com/oshokin/alarm-panel/internal/domain/alarm"
	"github.com/oshokin/alarm-panel/internal/keypad"
	"github.com/oshokin/alarm-panel/internal/logger"
	"github.com/oshokin/alarm-panel/internal/repository/eventlog"
	"github.com/oshokin/alarm-panel/internal/sensor"
	"github.com/oshokin/alarm-panel/internal/version"
)

// Options controls the alarm-panel process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// HTTPAddress provides an optional listen address override for the REST API.
	HTTPAddress string
	// EventLogFile specifies the path to persist alarm triggers.
	EventLogFile string
	// Console enables the interactive keypad terminal.
	Console bool
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the panel loop and its transports and blocks until the context
// is canceled, the console is closed or the gRPC server stops.
//
//nolint:funlen,cyclop // Startup wiring reads best top to bottom.
func Run(ctx context.Context, opts *Options) error {
	// Load configuration first to get panel settings.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	settings, err := cfg.MachineSettings()
	if err != nil {
		return fmt.Errorf("build machine settings: %w", err)
	}

	machine, err := alarm.NewMachine(settings, alarm.SystemClock{})
	if err != nil {
		return fmt.Errorf("create state machine: %w", err)
	}

	source, err := newSource(&cfg.Sensors)
	if err != nil {
		return fmt.Errorf("create sensor source: %w", err)
	}

	// Use EventLogFile from config unless overridden by command line option.
	eventLogFile := cfg.EventLogFile
	if opts.EventLogFile != "" {
		eventLogFile = opts.EventLogFile
	}

	var repo eventlog.Repository
	if settings.EventLogCapacity > 0 {
		repo = eventlog.NewFileRepository(eventLogFile)
	}

	listenAddress, err := resolveListenAddress(cfg.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	httpAddress := cfg.HTTPAddress
	if opts.HTTPAddress != "" {
		httpAddress = opts.HTTPAddress
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := New(Params{
		Machine:    machine,
		Source:     source,
		Queue:      keypad.NewQueue(keypad.DefaultQueueSize),
		Repository: repo,
		Output:     os.Stdout,
	})

	if opts.Console {
		console, consoleErr := keypad.NewConsole(p)
		if consoleErr != nil {
			return fmt.Errorf("open console: %w", consoleErr)
		}

		defer func() {
			_ = console.Close()
		}()

		// Log lines and feedback must go through readline to keep the prompt intact.
		logger.Redirect(console.Stdout())
		p.SetOutput(console.Stdout())

		go console.Run(ctx, cancel)
	}

	// Name the logger after a possible redirect so the named logger uses it.
	ctx = logger.WithName(ctx, "alarm-panel")

	logger.InfoKV(ctx, "Starting alarm panel", version.Fields()...)

	if err = p.Restore(ctx); err != nil {
		return fmt.Errorf("restore event log: %w", err)
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(grpcapi.AuditInterceptor(ctx)))
	grpcapi.Register(grpcServer, grpcapi.NewServer(p))

	if httpAddress != "" {
		startHTTP(ctx, cancel, p, httpAddress)
	}

	loopDone := make(chan struct{})

	go func() {
		defer close(loopDone)

		p.Loop(ctx, cfg.Panel.PollInterval, cfg.Panel.DisplayInterval)
	}()

	logger.InfoKV(ctx, "Alarm panel listening",
		"listen_address", listenAddress,
		"http_address", httpAddress,
		"event_log_file", eventLogFile,
		"sensor_driver", cfg.Sensors.Driver,
		"poll_interval", cfg.Panel.PollInterval.String())

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err = grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		cancel()

		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	<-loopDone
	logger.Info(ctx, "Alarm panel stopped")

	return nil
}

// startHTTP serves the REST API until ctx is done. A failure to listen cancels ctx.
func startHTTP(ctx context.Context, cancel context.CancelFunc, service httpapi.Service, address string) {
	server := httpapi.NewServer(ctx, service)

	go func() {
		logger.InfoKV(ctx, "REST API listening", "http_address", address)

		if err := server.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorKV(ctx, "REST API failed", "error", err)
			cancel()
		}
	}()

	go func() {
		<-ctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), config.DefaultTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WarnKV(ctx, "REST API shutdown failed", "error", err)
		}
	}()
}

// newSource builds the configured sensor driver.
func newSource(cfg *config.Sensors) (sensor.Source, error) {
	switch cfg.Driver {
	case config.SensorDriverGPIO:
		source, err := sensor.NewGPIO(cfg.GasPin, cfg.OverTempPin)
		if err != nil {
			return nil, err
		}

		return source, nil
	default:
		return sensor.NewManual(cfg.OverTempThreshold, cfg.AverageSamples), nil
	}
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise configAddr is bound as is,
// host included.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	if _, _, err := net.SplitHostPort(configAddr); err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	return configAddr, nil
}
