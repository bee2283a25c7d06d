package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/alarm-panel/internal/domain/alarm"
	"github.com/oshokin/alarm-panel/internal/logger"
)

// Config holds the settings shared by the alarm panel and the keypad client.
type Config struct {
	// ServerAddress is the gRPC address the panel listens on and the keypad dials.
	ServerAddress string `yaml:"server_addr"`
	// HTTPAddress is the optional listen address of the REST status API.
	HTTPAddress string `yaml:"http_addr,omitempty"`
	// EventLogFile is the path of the CBOR file storing trigger history.
	EventLogFile string `yaml:"event_log_file"`
	// Timeout is the duration for RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum level of log messages.
	LogLevel string `yaml:"log_level"`
	// Panel holds the state machine parameters.
	Panel Panel `yaml:"panel"`
	// Sensors selects and configures the hazard sensor driver.
	Sensors Sensors `yaml:"sensors"`
}

// Panel holds the state machine and polling parameters.
type Panel struct {
	// Code is the deactivation code, e.g. "1805" or "1,8,0,5".
	Code string `yaml:"code"`
	// AttemptThreshold is the number of wrong codes that locks the panel.
	AttemptThreshold int `yaml:"attempt_threshold"`
	// LockoutDuration is how long code entry stays disabled.
	LockoutDuration time.Duration `yaml:"lockout_duration"`
	// PollInterval is the cadence of the state machine ticks.
	PollInterval time.Duration `yaml:"poll_interval"`
	// DisplayInterval is the cadence of the periodic status screen; negative disables it.
	DisplayInterval time.Duration `yaml:"display_interval"`
	// EventLogCapacity is the number of trigger timestamps kept; 0 disables the log.
	// Unset means alarm.DefaultEventLogCapacity.
	EventLogCapacity *int `yaml:"event_log_capacity,omitempty"`
	// DisableEventLog turns the trigger log and its persistence off.
	DisableEventLog bool `yaml:"disable_event_log,omitempty"`
}

// Sensors configures the hazard sensor driver.
type Sensors struct {
	// Driver is SensorDriverManual or SensorDriverGPIO.
	Driver string `yaml:"driver"`
	// GasPin is the GPIO name of the active-low gas detector output.
	GasPin string `yaml:"gas_pin,omitempty"`
	// OverTempPin is the GPIO name of the active-high over-temperature comparator.
	OverTempPin string `yaml:"over_temp_pin,omitempty"`
	// OverTempThreshold is the averaged temperature limit in °C for the manual driver.
	OverTempThreshold float64 `yaml:"over_temp_threshold"`
	// AverageSamples is the moving average window of the temperature readings.
	AverageSamples int `yaml:"average_samples"`
}

const (
	// DefaultConfigFilename is the default filename for panel settings.
	DefaultConfigFilename = "alarm-panel-settings.yaml"

	// DefaultEventLogFilename is the default filename for trigger history.
	DefaultEventLogFilename = "alarm-panel-events.cbor"

	// DefaultTimeout is the default duration for RPC calls.
	DefaultTimeout = 5 * time.Second

	// DefaultPollInterval is the default state machine cadence.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultDisplayInterval is the default status screen refresh cadence.
	DefaultDisplayInterval = 5 * time.Second

	// DefaultOverTempThreshold is the default temperature limit in °C.
	DefaultOverTempThreshold = 50.0

	// DefaultAverageSamples is the default temperature moving average window.
	DefaultAverageSamples = 100

	// SensorDriverManual selects the in-memory sensor driven through the API.
	SensorDriverManual = "manual"

	// SensorDriverGPIO selects the periph.io GPIO sensor.
	SensorDriverGPIO = "gpio"

	// DefaultFilePermissions is the default file permission for config and data files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
	// errUnknownSensorDriver is returned for unsupported sensor drivers.
	errUnknownSensorDriver = errors.New("unknown sensor driver")
	// errGPIOPinsRequired is returned when the gpio driver has no pins configured.
	errGPIOPinsRequired = errors.New("gpio driver requires gas_pin and over_temp_pin")
	// errUnknownLogLevel is returned for unparseable log levels.
	errUnknownLogLevel = errors.New("unknown log level")
	// errNegativeValue is returned for negative numeric settings.
	errNegativeValue = errors.New("value must not be negative")
)

// Default returns a configuration with every default filled in.
func Default() *Config {
	cfg := &Config{
		ServerAddress: "127.0.0.1:50551",
	}

	// Defaults always validate.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes Config to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions, the file holds the deactivation code.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in defaults.
//
//nolint:cyclop // A flat list of field checks reads better than helpers.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if cfg.HTTPAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", cfg.HTTPAddress); err != nil {
			return fmt.Errorf("invalid http socket: %w", err)
		}
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, cfg.LogLevel)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.EventLogFile == "" {
		cfg.EventLogFile = DefaultEventLogFilename
	}

	if err := validatePanel(&cfg.Panel); err != nil {
		return fmt.Errorf("panel: %w", err)
	}

	if err := validateSensors(&cfg.Sensors); err != nil {
		return fmt.Errorf("sensors: %w", err)
	}

	return nil
}

// MachineSettings converts the panel section into state machine settings.
func (c *Config) MachineSettings() (alarm.Settings, error) {
	code, err := alarm.ParseCode(c.Panel.Code)
	if err != nil {
		return alarm.Settings{}, err
	}

	settings := alarm.Settings{
		Code:             code,
		AttemptThreshold: c.Panel.AttemptThreshold,
		LockoutDuration:  c.Panel.LockoutDuration,
		EventLogCapacity: alarm.DefaultEventLogCapacity,
	}

	if c.Panel.EventLogCapacity != nil {
		settings.EventLogCapacity = *c.Panel.EventLogCapacity
	}

	if c.Panel.DisableEventLog {
		settings.EventLogCapacity = 0
	}

	return settings, nil
}

// validatePanel fills panel defaults and checks the deactivation code.
func validatePanel(p *Panel) error {
	if p.Code == "" {
		p.Code = alarm.DefaultCode
	}

	if _, err := alarm.ParseCode(p.Code); err != nil {
		return err
	}

	if p.AttemptThreshold < 0 || p.LockoutDuration < 0 {
		return errNegativeValue
	}

	if p.EventLogCapacity == nil {
		capacity := alarm.DefaultEventLogCapacity
		p.EventLogCapacity = &capacity
	}

	if *p.EventLogCapacity < 0 {
		return errNegativeValue
	}

	if p.AttemptThreshold == 0 {
		p.AttemptThreshold = alarm.DefaultAttemptThreshold
	}

	if p.LockoutDuration == 0 {
		p.LockoutDuration = alarm.DefaultLockoutDuration
	}

	if p.PollInterval <= 0 {
		p.PollInterval = DefaultPollInterval
	}

	if p.DisplayInterval == 0 {
		p.DisplayInterval = DefaultDisplayInterval
	}

	return nil
}

// validateSensors fills sensor defaults and checks driver-specific fields.
func validateSensors(s *Sensors) error {
	if s.Driver == "" {
		s.Driver = SensorDriverManual
	}

	if s.OverTempThreshold == 0 {
		s.OverTempThreshold = DefaultOverTempThreshold
	}

	if s.AverageSamples < 0 {
		return errNegativeValue
	}

	if s.AverageSamples == 0 {
		s.AverageSamples = DefaultAverageSamples
	}

	switch s.Driver {
	case SensorDriverManual:
		return nil
	case SensorDriverGPIO:
		if s.GasPin == "" || s.OverTempPin == "" {
			return errGPIOPinsRequired
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", errUnknownSensorDriver, s.Driver)
	}
}
