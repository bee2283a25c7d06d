package keypad

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	keys "github.com/oshokin/alarm-panel/internal/keypad"
	"github.com/oshokin/alarm-panel/internal/sensor"
)

func TestFormatFields(t *testing.T) {
	t.Parallel()

	lines := formatFields(map[string]any{
		"state":    "IDLE",
		"attempts": float64(0),
		"alarm":    false,
	})
	require.Equal(t, []string{"alarm: false", "attempts: 0", "state: IDLE"}, lines)
}

func TestPress_ValidatesLocally(t *testing.T) {
	t.Parallel()

	opts := &Options{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")}

	err := Press(context.Background(), opts, "12?")
	require.ErrorIs(t, err, keys.ErrUnknownKey)

	// Valid keys reach the configuration step, which fails on the missing file.
	err = Press(context.Background(), opts, "12")
	require.Error(t, err)
	require.NotErrorIs(t, err, keys.ErrUnknownKey)
}

func TestSimulate_RequiresHazards(t *testing.T) {
	t.Parallel()

	err := Simulate(context.Background(), new(Options), sensor.Override{})
	require.ErrorIs(t, err, errNoHazards)
}
