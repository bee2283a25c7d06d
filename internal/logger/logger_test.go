package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestContextHelpers verifies the named logger and key-values travel with the context.
func TestContextHelpers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := ToContext(context.Background(), NewWithWriter(&buf, zapcore.DebugLevel))
	ctx = WithName(ctx, "alarm-panel")
	ctx = WithKV(ctx, "board", "lab5")

	InfoKV(ctx, "Alarm triggered", "state", "TRIGGERED")

	out := buf.String()
	require.Contains(t, out, "alarm-panel")
	require.Contains(t, out, "Alarm triggered")
	require.Contains(t, out, "lab5")
	require.Contains(t, out, "TRIGGERED")
}

// TestFromContextFallsBackToGlobal checks the global logger is used for bare contexts.
func TestFromContextFallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}
