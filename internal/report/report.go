package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/oshokin/alarm-panel/internal/domain/alarm"
	"github.com/oshokin/alarm-panel/internal/sensor"
)

// LogTimeLayout is the timestamp format of trigger log lines.
const LogTimeLayout = "2006-01-02 15:04:05"

// AlarmStatus answers the serial "alarm state" query.
func AlarmStatus(out alarm.Output) string {
	if out.State.IsAlarmed() {
		return "The alarm is activated"
	}

	return "The alarm is not activated"
}

// LockStatus answers the serial "lock state" query.
func LockStatus(out alarm.Output) string {
	if out.State == alarm.StateLocked {
		return fmt.Sprintf("System is blocked (%s left)", out.LockoutRemaining.Round(time.Second))
	}

	return "System is not blocked"
}

// AvailableCommands lists the console commands.
func AvailableCommands() []string {
	return []string{
		"Available commands:",
		"  alarm    get the alarm state",
		"  lock     get the system lock status",
		"  sensors  show the sensor readings",
		"  screen   show the status screen",
		"  log      show the alarm log",
		"  help     show this list",
		"  quit     leave the console",
		"Any other line is typed on the keypad: 0-9 A-D, '#' submits, '*' shows the log.",
	}
}

// FormatLog renders trigger timestamps oldest first, one per line.
func FormatLog(entries []time.Time) []string {
	if len(entries) == 0 {
		return []string{"No alarm events recorded"}
	}

	lines := make([]string, 0, len(entries))
	for _, ts := range entries {
		lines = append(lines, ts.Format(LogTimeLayout))
	}

	return lines
}

// SensorReport renders the serial sensor report.
func SensorReport(reading sensor.Reading) []string {
	lines := make([]string, 0, 3)

	if reading.HasTemperature {
		lines = append(lines, fmt.Sprintf("Temperature: %.2f C", reading.TemperatureC))
	}

	if reading.GasDetected {
		lines = append(lines, "Gas Detected")
	} else {
		lines = append(lines, "No Gas Detected")
	}

	switch {
	case reading.OverTemperature:
		lines = append(lines, "Temperature Alarm")
	case reading.GasDetected:
		lines = append(lines, "Gas Alarm")
	default:
		lines = append(lines, "No Alarms")
	}

	return lines
}

// Screen renders the four-line status display.
func Screen(out alarm.Output, reading sensor.Reading) []string {
	lines := make([]string, 0, 4)

	if reading.HasTemperature {
		lines = append(lines, fmt.Sprintf("Temp: %.1f C", reading.TemperatureC))
	} else {
		lines = append(lines, "Temp: "+onOff(reading.OverTemperature, "OVER LIMIT", "Normal"))
	}

	lines = append(lines, "Gas: "+onOff(reading.GasDetected, "ALERT", "Safe"))

	alarmLine := "Alarm: " + out.State.String()
	if out.State == alarm.StateLocked {
		alarmLine += " " + out.LockoutRemaining.Round(time.Second).String()
	}

	lines = append(lines, alarmLine)

	if reading.Hazards() > 0 {
		lines = append(lines, "!! WARNING !!")
	}

	return lines
}

// Feedback returns the messages for the events that happened on a tick.
func Feedback(out alarm.Output) []string {
	var lines []string

	if !out.TriggeredAt.IsZero() {
		lines = append(lines, "Alarm Triggered - Logging Time")
	}

	switch {
	case out.Accepted:
		lines = append(lines, "Alarm Deactivated")
	case out.Rejected && out.State == alarm.StateLocked:
		lines = append(lines, "Incorrect Code", "System is blocked")
	case out.Rejected:
		lines = append(lines, "Incorrect Code", "Try Again")
	case out.Unlocked:
		lines = append(lines, "System is not blocked")
	}

	return lines
}

// Join renders lines with CRLF endings, as the serial terminal expects.
func Join(lines []string) string {
	if len(lines) == 0 {
		return ""
	}

	return strings.Join(lines, "\r\n") + "\r\n"
}

func onOff(on bool, yes, no string) string {
	if on {
		return yes
	}

	return no
}

// StatusFields flattens the panel status for the remote APIs.
func StatusFields(out alarm.Output, reading sensor.Reading) map[string]any {
	fields := map[string]any{
		"state":                out.State.String(),
		"alarm_led":            out.AlarmLED,
		"emergency_led":        out.EmergencyLED,
		"lockout_blink":        out.LockoutBlink,
		"incorrect_code_led":   out.IncorrectCodeLED,
		"buffer_length":        out.BufferLength,
		"attempts":             out.Attempts,
		"lockout_remaining_ms": out.LockoutRemaining.Milliseconds(),
		"gas_detected":         reading.GasDetected,
		"over_temperature":     reading.OverTemperature,
	}

	if reading.HasTemperature {
		fields["temperature_c"] = reading.TemperatureC
	}

	return fields
}
