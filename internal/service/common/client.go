//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	api "github.com/oshokin/alarm-panel/internal/api/grpc/panel"
	"github.com/oshokin/alarm-panel/internal/config"
	"github.com/oshokin/alarm-panel/internal/sensor"
)

// Client wraps the gRPC PanelService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the panel.
	conn *grpc.ClientConn
	// api is the PanelService client.
	api *api.PanelServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// actor is attached to every call as metadata when set.
	actor *Actor
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor attaches the actor to every call for the panel audit log.
func WithActor(actor *Actor) Option {
	return func(c *Client) {
		c.actor = actor
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errKeysRequired is returned when an empty key sequence is pressed.
	errKeysRequired = errors.New("keys must be provided")
	// errMalformedResponse is returned when a response misses expected fields.
	errMalformedResponse = errors.New("malformed response")
)

// Dial establishes a gRPC connection to the alarm panel.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	// Use the non-context NewClient API recommended by grpc-go
	// (DialContext is deprecated as of grpc-go v1.60+).
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial alarm panel: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         api.NewPanelServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// GetStatus retrieves the panel status fields.
func (c *Client) GetStatus(ctx context.Context) (map[string]any, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.GetStatus(callCtx)
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	return response.AsMap(), nil
}

// PressKeys sends a key sequence and returns the number of queued events.
func (c *Client) PressKeys(ctx context.Context, keys string) (int, error) {
	if keys == "" {
		return 0, errKeysRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.PressKeys(callCtx, keys)
	if err != nil {
		return 0, fmt.Errorf("press keys: %w", err)
	}

	queued, ok := response.GetFields()[api.QueuedField]
	if !ok {
		return 0, fmt.Errorf("press keys: %w: no %s field", errMalformedResponse, api.QueuedField)
	}

	return int(queued.GetNumberValue()), nil
}

// GetEventLog retrieves the trigger timestamps oldest first.
func (c *Client) GetEventLog(ctx context.Context) ([]time.Time, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.GetEventLog(callCtx)
	if err != nil {
		return nil, fmt.Errorf("get event log: %w", err)
	}

	values := response.GetFields()[api.EntriesField].GetListValue().GetValues()
	entries := make([]time.Time, 0, len(values))

	for _, value := range values {
		ts, parseErr := time.Parse(time.RFC3339Nano, value.GetStringValue())
		if parseErr != nil {
			return nil, fmt.Errorf("get event log: %w: %w", errMalformedResponse, parseErr)
		}

		entries = append(entries, ts)
	}

	return entries, nil
}

// SetHazards applies simulated sensor values and returns the resulting status fields.
func (c *Client) SetHazards(ctx context.Context, override sensor.Override) (map[string]any, error) {
	fields := make(map[string]any, 2)

	if override.Gas != nil {
		fields[api.GasField] = *override.Gas
	}

	if override.TemperatureC != nil {
		fields[api.TemperatureField] = *override.TemperatureC
	}

	request, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode hazards: %w", err)
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.SetHazards(callCtx, request)
	if err != nil {
		return nil, fmt.Errorf("set hazards: %w", err)
	}

	return response.AsMap(), nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline. The actor, when
// set, travels as outgoing metadata.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.actor != nil {
		ctx = metadata.AppendToOutgoingContext(ctx, api.ActorMetadataKey, c.actor.String())
	}

	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
