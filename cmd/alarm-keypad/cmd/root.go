package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-panel/internal/config"
	"github.com/oshokin/alarm-panel/internal/sensor"
	"github.com/oshokin/alarm-panel/internal/service/keypad"
	"github.com/oshokin/alarm-panel/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides the panel address from config.
	serverAddress string
	// gas is the simulated gas detector state.
	gas bool
	// temperature is the simulated temperature in °C.
	temperature float64
	// watchInterval is the status polling interval.
	watchInterval time.Duration

	// rootCmd represents the base command of the remote keypad.
	rootCmd = &cobra.Command{
		Use:   "alarm-keypad",
		Short: "Remote keypad and status client for the alarm panel.",
		Long: `Talks to a running alarm-panel over gRPC.

Press keys to enter the deactivation code ('#' submits, '*' shows the log),
read the panel status and trigger log, or simulate hazards on a panel that
runs the manual sensor driver.`,
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Print the panel status.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return keypad.Status(cmd.Context(), options(cmd))
		},
	}

	pressCmd = &cobra.Command{
		Use:     "press <keys>",
		Short:   "Press a key sequence, e.g. 1805#.",
		Example: "  alarm-keypad press 1805#",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return keypad.Press(cmd.Context(), options(cmd), args[0])
		},
	}

	logCmd = &cobra.Command{
		Use:   "log",
		Short: "Print the alarm trigger log.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return keypad.Log(cmd.Context(), options(cmd))
		},
	}

	simulateCmd = &cobra.Command{
		Use:     "simulate",
		Short:   "Set simulated hazards on a panel with the manual sensor driver.",
		Example: "  alarm-keypad simulate --gas=true --temperature 65",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var override sensor.Override

			if cmd.Flags().Changed("gas") {
				override.Gas = &gas
			}

			if cmd.Flags().Changed("temperature") {
				override.TemperatureC = &temperature
			}

			return keypad.Simulate(cmd.Context(), options(cmd), override)
		},
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Print every panel state change until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return keypad.Watch(cmd.Context(), options(cmd), watchInterval)
		},
	}
)

// options builds the client options from the persistent flags.
func options(cmd *cobra.Command) *keypad.Options {
	return &keypad.Options{
		ConfigPath:    cfgPath,
		ServerAddress: serverAddress,
		Output:        cmd.OutOrStdout(),
	}
}

// Execute runs the alarm-keypad CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(statusCmd, pressCmd, logCmd, simulateCmd, watchCmd)

	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1) //nolint:gocritic // stop is called explicitly above.
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&serverAddress, "server", "s", "", "panel gRPC address (overrides config)")

	simulateCmd.Flags().BoolVar(&gas, "gas", false, "gas detector state")
	simulateCmd.Flags().Float64VarP(&temperature, "temperature", "t", 0, "temperature in °C")

	watchCmd.Flags().DurationVarP(&watchInterval, "interval", "n", keypad.DefaultWatchInterval, "status polling interval")
}
