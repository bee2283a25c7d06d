package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/alarm-panel/internal/config"
	"github.com/oshokin/alarm-panel/internal/sensor"
	"github.com/oshokin/alarm-panel/internal/service/common"
	"github.com/oshokin/alarm-panel/internal/service/keypad"
	"github.com/oshokin/alarm-panel/internal/service/panel"
)

const (
	// waitFor bounds every eventual assertion.
	waitFor = 3 * time.Second
	// pollEvery is the assertion polling period.
	pollEvery = 20 * time.Millisecond
)

// reservePort returns a free loopback address.
func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// writeConfig stores panel settings with a fast poll interval and returns the path.
func writeConfig(t *testing.T, addr, httpAddr string) string {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")

	require.NoError(t, config.Save(cfgPath, &config.Config{
		ServerAddress: addr,
		HTTPAddress:   httpAddr,
		Timeout:       2 * time.Second,
		Panel: config.Panel{
			Code:             "1805",
			AttemptThreshold: 3,
			LockoutDuration:  time.Minute,
			PollInterval:     10 * time.Millisecond,
		},
		Sensors: config.Sensors{
			Driver:         config.SensorDriverManual,
			AverageSamples: 1,
		},
	}))

	return cfgPath
}

// startPanel runs the real panel and returns a stop function that waits for shutdown.
func startPanel(t *testing.T, cfgPath, addr, eventLogPath string) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- panel.Run(ctx, &panel.Options{
			ConfigPath:    cfgPath,
			ListenAddress: addr,
			EventLogFile:  eventLogPath,
		})
	}()

	// Wait for the listener to come up.
	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", addr, pollEvery)
		if err != nil {
			return false
		}

		_ = conn.Close()

		return true
	}, waitFor, pollEvery)

	return func() {
		cancel()
		require.NoError(t, <-done)
	}
}

func dial(t *testing.T, addr string) *common.Client {
	t.Helper()

	c, err := common.Dial(context.Background(), addr,
		common.WithCallTimeout(2*time.Second),
		common.WithActor(&common.Actor{Hostname: "test-host", Username: "test-user"}))
	require.NoError(t, err)

	t.Cleanup(func() { _ = c.Close() })

	return c
}

func waitState(t *testing.T, c *common.Client, want string) {
	t.Helper()

	require.Eventually(t, func() bool {
		fields, err := c.GetStatus(context.Background())

		return err == nil && fields["state"] == want
	}, waitFor, pollEvery, "state %s", want)
}

// TestPanel_TriggerDeactivateRestore drives a full alarm cycle over gRPC and
// checks that the trigger log survives a restart.
func TestPanel_TriggerDeactivateRestore(t *testing.T) {
	t.Parallel()

	var (
		ctx          = context.Background()
		addr         = reservePort(t)
		eventLogPath = filepath.Join(t.TempDir(), "events.cbor")
		cfgPath      = writeConfig(t, addr, "")
		gasOn        = true
		gasOff       = false
	)

	stop := startPanel(t, cfgPath, addr, eventLogPath)
	c := dial(t, addr)

	waitState(t, c, "IDLE")

	_, err := c.SetHazards(ctx, sensor.Override{Gas: &gasOn})
	require.NoError(t, err)
	waitState(t, c, "TRIGGERED")

	_, err = c.SetHazards(ctx, sensor.Override{Gas: &gasOff})
	require.NoError(t, err)

	_, err = c.PressKeys(ctx, "12x")
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	queued, err := c.PressKeys(ctx, "1805#")
	require.NoError(t, err)
	require.Equal(t, 5, queued)
	waitState(t, c, "IDLE")

	entries, err := c.GetEventLog(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	stop()

	_, err = os.Stat(eventLogPath)
	require.NoError(t, err)

	// Restart on a fresh port with the same event log.
	addr = reservePort(t)
	cfgPath = writeConfig(t, addr, "")
	stop = startPanel(t, cfgPath, addr, eventLogPath)

	defer stop()

	restored, err := dial(t, addr).GetEventLog(ctx)
	require.NoError(t, err)
	require.Len(t, restored, 1)
	require.True(t, restored[0].Equal(entries[0]))
}

// TestPanel_Lockout locks the panel with wrong codes.
func TestPanel_Lockout(t *testing.T) {
	t.Parallel()

	var (
		ctx   = context.Background()
		addr  = reservePort(t)
		gasOn = true
	)

	stop := startPanel(t, writeConfig(t, addr, ""), addr, filepath.Join(t.TempDir(), "events.cbor"))
	defer stop()

	c := dial(t, addr)

	_, err := c.SetHazards(ctx, sensor.Override{Gas: &gasOn})
	require.NoError(t, err)
	waitState(t, c, "TRIGGERED")

	_, err = c.PressKeys(ctx, "0000#0000#0000#")
	require.NoError(t, err)
	waitState(t, c, "LOCKED")

	fields, err := c.GetStatus(ctx)
	require.NoError(t, err)
	require.InDelta(t, 3.0, fields["attempts"], 1e-9)
	require.Positive(t, fields["lockout_remaining_ms"])
}

// TestPanel_RESTAndKeypadClient exercises the REST API and the keypad commands.
func TestPanel_RESTAndKeypadClient(t *testing.T) {
	t.Parallel()

	var (
		addr     = reservePort(t)
		httpAddr = reservePort(t)
		cfgPath  = writeConfig(t, addr, httpAddr)
	)

	stop := startPanel(t, cfgPath, addr, filepath.Join(t.TempDir(), "events.cbor"))
	defer stop()

	var statusBody map[string]any

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + httpAddr + "/api/v1/status") //nolint:noctx // Test helper.
		if err != nil {
			return false
		}

		defer resp.Body.Close()

		return resp.StatusCode == http.StatusOK && json.NewDecoder(resp.Body).Decode(&statusBody) == nil
	}, waitFor, pollEvery)
	require.Equal(t, "IDLE", statusBody["state"])

	var (
		ctx  = context.Background()
		out  bytes.Buffer
		opts = &keypad.Options{ConfigPath: cfgPath, Output: &out}
		temp = 90.0
	)

	require.NoError(t, keypad.Simulate(ctx, opts, sensor.Override{TemperatureC: &temp}))
	require.Contains(t, out.String(), "state: ")

	waitState(t, dial(t, addr), "TRIGGERED")

	out.Reset()
	require.NoError(t, keypad.Status(ctx, opts))
	require.Contains(t, out.String(), "state: TRIGGERED")

	out.Reset()
	require.NoError(t, keypad.Press(ctx, opts, "*"))
	require.Equal(t, "1 key(s) queued\r\n", out.String())

	out.Reset()
	require.NoError(t, keypad.Log(ctx, opts))
	require.NotContains(t, out.String(), "No alarm events recorded")

	// Watch prints the current state once and returns on cancel.
	var watched bytes.Buffer

	watchCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()

	require.NoError(t, keypad.Watch(watchCtx, &keypad.Options{ConfigPath: cfgPath, Output: &watched}, 20*time.Millisecond))
	require.Contains(t, watched.String(), "TRIGGERED")
}
