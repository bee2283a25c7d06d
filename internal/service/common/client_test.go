//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"

	api "github.com/oshokin/alarm-panel/internal/api/grpc/panel"
)

// TestDial_ValidatesAddress verifies that Dial rejects empty addresses.
func TestDial_ValidatesAddress(t *testing.T) {
	t.Parallel()

	c, err := Dial(context.Background(), "")
	require.Error(t, err)
	require.Nil(t, c)
}

// TestDial_Options verifies that options are applied to the client.
func TestDial_Options(t *testing.T) {
	t.Parallel()

	actor := &Actor{Hostname: "bench", Username: "tester"}

	c, err := Dial(context.Background(), "127.0.0.1:1", WithCallTimeout(time.Second), WithActor(actor))
	require.NoError(t, err)

	t.Cleanup(func() { _ = c.Close() })

	require.Equal(t, time.Second, c.callTimeout)
	require.Same(t, actor, c.actor)

	// Non-positive timeouts keep the default.
	WithCallTimeout(0)(c)
	require.Equal(t, time.Second, c.callTimeout)
}

// TestClient_callContext checks timeout vs cancel-only behavior of callContext.
func TestClient_callContext(t *testing.T) {
	t.Parallel()

	c := &Client{
		callTimeout: 0,
	}

	ctx, cancel := c.callContext(context.Background())
	cancel()

	require.NotNil(t, ctx)

	_, ok := metadata.FromOutgoingContext(ctx)
	require.False(t, ok)

	c.callTimeout = 10 * time.Millisecond
	c.actor = &Actor{Hostname: "bench", Username: "tester"}

	ctx, cancel = c.callContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, 30*time.Millisecond)

	md, ok := metadata.FromOutgoingContext(ctx)
	require.True(t, ok)
	require.Equal(t, []string{"tester@bench"}, md.Get(api.ActorMetadataKey))
}

// TestPressKeys_Empty asserts that an empty sequence is rejected by the client.
func TestPressKeys_Empty(t *testing.T) {
	t.Parallel()

	c := new(Client)

	_, err := c.PressKeys(context.Background(), "")
	require.ErrorIs(t, err, errKeysRequired)
}

// TestClose_Nil asserts Close tolerates an unconnected client.
func TestClose_Nil(t *testing.T) {
	t.Parallel()

	var c *Client
	require.NoError(t, c.Close())
	require.NoError(t, new(Client).Close())
}
