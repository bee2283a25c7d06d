package alarm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestStateString verifies state names and the alarm output mapping.
func TestStateString(t *testing.T) {
	t.Parallel()

	cases := map[State]string{
		StateIdle:      "IDLE",
		StateTriggered: "TRIGGERED",
		StateEmergency: "EMERGENCY",
		StateLocked:    "LOCKED",
		State(42):      "UNKNOWN",
	}
	for s, name := range cases {
		require.Equal(t, name, s.String())
	}

	require.False(t, StateIdle.IsAlarmed())
	require.True(t, StateTriggered.IsAlarmed())
	require.True(t, StateEmergency.IsAlarmed())
	require.False(t, StateLocked.IsAlarmed())
}

// TestSensorSnapshotHazards verifies hazard counting.
func TestSensorSnapshotHazards(t *testing.T) {
	t.Parallel()

	require.Zero(t, SensorSnapshot{}.Hazards())
	require.Equal(t, 1, SensorSnapshot{GasDetected: true}.Hazards())
	require.Equal(t, 1, SensorSnapshot{OverTemperature: true}.Hazards())
	require.Equal(t, 2, SensorSnapshot{GasDetected: true, OverTemperature: true}.Hazards())
}

// TestKeyEventString verifies event descriptions used in logs.
func TestKeyEventString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "none", KeyEvent{}.String())
	require.Equal(t, "symbol(7)", SymbolEntered('7').String())
	require.Equal(t, "submit", SubmitPressed().String())
	require.Equal(t, "show-log", ShowLogPressed().String())
}
