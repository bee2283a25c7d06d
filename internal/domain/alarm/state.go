package alarm

// State is the alarm panel mode. Exactly one state is active at a time.
type State uint8

const (
	// StateIdle means no alarm is active.
	StateIdle State = iota
	// StateTriggered means a single hazard raised the alarm.
	StateTriggered
	// StateEmergency means both hazards were present at the same time.
	StateEmergency
	// StateLocked means code entry is disabled until the lockout expires.
	StateLocked
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateTriggered:
		return "TRIGGERED"
	case StateEmergency:
		return "EMERGENCY"
	case StateLocked:
		return "LOCKED"
	default:
		return "UNKNOWN"
	}
}

// IsAlarmed reports whether the state keeps the alarm output on.
func (s State) IsAlarmed() bool {
	return s == StateTriggered || s == StateEmergency
}

// SensorSnapshot holds the hazard flags sampled at the start of a tick.
type SensorSnapshot struct {
	// GasDetected is set when the gas detector reports gas.
	GasDetected bool
	// OverTemperature is set when the temperature is over the limit.
	OverTemperature bool
}

// Hazards returns the number of hazard flags that are set.
func (s SensorSnapshot) Hazards() int {
	count := 0

	if s.GasDetected {
		count++
	}

	if s.OverTemperature {
		count++
	}

	return count
}
