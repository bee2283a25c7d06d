package panel

import (
	"context"
	"errors"
	"math"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/alarm-panel/internal/domain/alarm"
	"github.com/oshokin/alarm-panel/internal/keypad"
	"github.com/oshokin/alarm-panel/internal/sensor"
)

var errTestQueue = errors.New("test queue error")

// fakeService implements the panel Service interface for unit testing the transport.
type fakeService struct {
	// mu protects the fields below.
	mu sync.Mutex
	// status is returned from Status.
	status alarm.Output
	// reading is returned from Reading.
	reading sensor.Reading
	// log is returned from EventLog.
	log []time.Time
	// pressed records the accepted key sequences.
	pressed []string
	// pressErr overrides the PressKeys result.
	pressErr error
	// hazards records the applied overrides.
	hazards []sensor.Override
	// hazardsErr overrides the SetHazards result.
	hazardsErr error
}

func (f *fakeService) Status() alarm.Output {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.status
}

func (f *fakeService) Reading() sensor.Reading {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.reading
}

func (f *fakeService) EventLog() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.log
}

func (f *fakeService) PressKeys(_ context.Context, keys string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pressErr != nil {
		return 0, f.pressErr
	}

	events, err := keypad.Parse(keys)
	if err != nil {
		return 0, err
	}

	f.pressed = append(f.pressed, keys)

	return len(events), nil
}

func (f *fakeService) SetHazards(_ context.Context, override sensor.Override) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.hazardsErr != nil {
		return f.hazardsErr
	}

	f.hazards = append(f.hazards, override)
	if override.Gas != nil {
		f.reading.GasDetected = *override.Gas
	}

	return nil
}

// TestServer_GetStatus verifies the status fields reach the response.
func TestServer_GetStatus(t *testing.T) {
	t.Parallel()

	svc := &fakeService{
		status:  alarm.Output{State: alarm.StateEmergency, AlarmLED: true, EmergencyLED: true},
		reading: sensor.Reading{TemperatureC: 61, HasTemperature: true},
	}

	response, err := NewServer(svc).GetStatus(context.Background(), new(emptypb.Empty))
	require.NoError(t, err)

	fields := response.GetFields()
	require.Equal(t, "EMERGENCY", fields["state"].GetStringValue())
	require.True(t, fields["emergency_led"].GetBoolValue())
	require.InDelta(t, 61.0, fields["temperature_c"].GetNumberValue(), 1e-9)
}

// TestServer_PressKeys checks validation and error code mapping.
func TestServer_PressKeys(t *testing.T) {
	t.Parallel()

	var (
		ctx = context.Background()
		svc = new(fakeService)
		s   = NewServer(svc)
	)

	_, err := s.PressKeys(ctx, nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.PressKeys(ctx, wrapperspb.String("12z#"))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	response, err := s.PressKeys(ctx, wrapperspb.String("1805#"))
	require.NoError(t, err)
	require.InDelta(t, 5.0, response.GetFields()[QueuedField].GetNumberValue(), 1e-9)
	require.Equal(t, []string{"1805#"}, svc.pressed)

	svc.pressErr = keypad.ErrQueueFull
	_, err = s.PressKeys(ctx, wrapperspb.String("1"))
	require.Equal(t, codes.ResourceExhausted, status.Code(err))

	svc.pressErr = errTestQueue
	_, err = s.PressKeys(ctx, wrapperspb.String("1"))
	require.Equal(t, codes.Internal, status.Code(err))
}

// TestServer_GetEventLog checks that timestamps are returned oldest first.
func TestServer_GetEventLog(t *testing.T) {
	t.Parallel()

	first := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := &fakeService{log: []time.Time{first, first.Add(time.Hour)}}

	response, err := NewServer(svc).GetEventLog(context.Background(), new(emptypb.Empty))
	require.NoError(t, err)

	values := response.GetFields()[EntriesField].GetListValue().GetValues()
	require.Len(t, values, 2)
	require.Equal(t, "2024-06-01T12:00:00Z", values[0].GetStringValue())
	require.Equal(t, "2024-06-01T13:00:00Z", values[1].GetStringValue())
}

// TestServer_SetHazards checks request validation and the simulation guard.
func TestServer_SetHazards(t *testing.T) {
	t.Parallel()

	var (
		ctx = context.Background()
		svc = new(fakeService)
		s   = NewServer(svc)
	)

	_, err := s.SetHazards(ctx, nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	bad, err := structpb.NewStruct(map[string]any{GasField: "yes"})
	require.NoError(t, err)

	_, err = s.SetHazards(ctx, bad)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	bad, err = structpb.NewStruct(map[string]any{TemperatureField: true})
	require.NoError(t, err)

	_, err = s.SetHazards(ctx, bad)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	for _, value := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		nonFinite := &structpb.Struct{Fields: map[string]*structpb.Value{
			TemperatureField: structpb.NewNumberValue(value),
		}}

		_, err = s.SetHazards(ctx, nonFinite)
		require.Equal(t, codes.InvalidArgument, status.Code(err), "temperature %v", value)
	}

	require.Empty(t, svc.hazards)

	req, err := structpb.NewStruct(map[string]any{GasField: true, TemperatureField: 55.5})
	require.NoError(t, err)

	response, err := s.SetHazards(ctx, req)
	require.NoError(t, err)
	require.True(t, response.GetFields()["gas_detected"].GetBoolValue())
	require.Len(t, svc.hazards, 1)
	require.InDelta(t, 55.5, *svc.hazards[0].TemperatureC, 1e-9)

	svc.hazardsErr = sensor.ErrSimulationUnsupported
	_, err = s.SetHazards(ctx, req)
	require.Equal(t, codes.FailedPrecondition, status.Code(err))
}

// TestClient_Roundtrip exercises the service descriptor and the client over an in-memory listener.
func TestClient_Roundtrip(t *testing.T) {
	t.Parallel()

	listener := bufconn.Listen(1 << 20)
	grpcServer := grpc.NewServer()
	svc := &fakeService{status: alarm.Output{State: alarm.StateTriggered}}

	Register(grpcServer, NewServer(svc))

	go func() {
		_ = grpcServer.Serve(listener)
	}()

	t.Cleanup(grpcServer.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() { _ = conn.Close() })

	var (
		ctx    = context.Background()
		client = NewPanelServiceClient(conn)
	)

	statusResponse, err := client.GetStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, "TRIGGERED", statusResponse.GetFields()["state"].GetStringValue())

	_, err = client.PressKeys(ctx, "18")
	require.NoError(t, err)

	_, err = client.PressKeys(ctx, "!")
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	logResponse, err := client.GetEventLog(ctx)
	require.NoError(t, err)
	require.Empty(t, logResponse.GetFields()[EntriesField].GetListValue().GetValues())

	req, err := structpb.NewStruct(map[string]any{GasField: true})
	require.NoError(t, err)

	_, err = client.SetHazards(ctx, req)
	require.NoError(t, err)

	svc.mu.Lock()
	defer svc.mu.Unlock()

	require.Equal(t, []string{"18"}, svc.pressed)
	require.Len(t, svc.hazards, 1)
}
