package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-panel/internal/config"
	"github.com/oshokin/alarm-panel/internal/service/panel"
	"github.com/oshokin/alarm-panel/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// eventLogFile path where alarm triggers are persisted.
	eventLogFile string
	// httpAddress overrides the REST API listen address.
	httpAddress string
	// console enables the interactive keypad terminal.
	console bool

	// rootCmd represents the base command for running the alarm panel.
	rootCmd = &cobra.Command{
		Use:   "alarm-panel [listen-address]",
		Short: "Run the alarm panel state machine and its remote APIs.",
		Long: `Starts the alarm panel: polls the gas and temperature sensors, drives the
alarm state machine and accepts the deactivation code from the keypad.

Keys arrive from the interactive console (--console), the gRPC API used by
alarm-keypad, and the optional REST API. The panel listens on server_addr
from the config (127.0.0.1:50551 by default). Listen address can be provided
as argument to override config (e.g., :9090, 0.0.0.0:50551). Neither API
authenticates callers, so bind a non-loopback address only on a trusted network.
Alarm triggers are persisted to a CBOR file for recovery across restarts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &panel.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				HTTPAddress:   httpAddress,
				EventLogFile:  eventLogFile,
				Console:       console,
			}

			return panel.Run(ctx, options)
		},
	}

	// initCmd writes a configuration file filled with defaults.
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("configuration file %s already exists", configPath)
			}

			if err := config.Save(configPath, config.Default()); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Configuration written to", configPath)

			return nil
		},
	}
)

// Execute runs the alarm-panel CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().
		StringVarP(&eventLogFile, "event-log-file", "e", "", "path to persist alarm triggers (overrides config)")
	rootCmd.Flags().StringVar(&httpAddress, "http-addr", "", "REST API listen address (overrides config)")
	rootCmd.Flags().BoolVarP(&console, "console", "i", false, "open the interactive keypad console")
}
