package panel

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/alarm-panel/internal/domain/alarm"
	"github.com/oshokin/alarm-panel/internal/keypad"
	"github.com/oshokin/alarm-panel/internal/logger"
	"github.com/oshokin/alarm-panel/internal/report"
	"github.com/oshokin/alarm-panel/internal/sensor"
)

// Field names of the SetHazards request and the PressKeys response.
const (
	GasField         = "gas"
	TemperatureField = "temperature_c"
	QueuedField      = "queued"
	EntriesField     = "entries"
)

// Service abstracts the panel operations the transport layer depends on.
type Service interface {
	Status() alarm.Output
	Reading() sensor.Reading
	EventLog() []time.Time
	PressKeys(ctx context.Context, keys string) (int, error)
	SetHazards(ctx context.Context, override sensor.Override) error
}

// Server implements the PanelService gRPC API.
type Server struct {
	// service provides the panel operations.
	service Service
}

var _ PanelServiceServer = (*Server)(nil)

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// GetStatus returns the machine output and the latest sensor reading.
func (s *Server) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.status(ctx)
}

// PressKeys queues the key sequence carried in the request value.
func (s *Server) PressKeys(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "keys are required")
	}

	queued, err := s.service.PressKeys(ctx, req.GetValue())

	switch {
	case err == nil:
	case errors.Is(err, keypad.ErrUnknownKey):
		return nil, status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, keypad.ErrQueueFull):
		return nil, status.Error(codes.ResourceExhausted, err.Error())
	default:
		logger.ErrorKV(ctx, "Failed to queue keys", "error", err)

		return nil, status.Error(codes.Internal, "unable to queue keys")
	}

	response, err := structpb.NewStruct(map[string]any{QueuedField: queued})
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode response")
	}

	return response, nil
}

// GetEventLog returns the trigger timestamps as RFC 3339 strings, oldest first.
func (s *Server) GetEventLog(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	var (
		entries = s.service.EventLog()
		values  = make([]any, 0, len(entries))
	)

	for _, ts := range entries {
		values = append(values, ts.Format(time.RFC3339Nano))
	}

	response, err := structpb.NewStruct(map[string]any{EntriesField: values})
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode response")
	}

	return response, nil
}

// SetHazards applies the simulated gas flag and temperature, then returns the status.
func (s *Server) SetHazards(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	override, err := toOverride(req)
	if err != nil {
		return nil, err
	}

	err = s.service.SetHazards(ctx, override)

	switch {
	case err == nil:
	case errors.Is(err, sensor.ErrSimulationUnsupported):
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	default:
		return nil, status.Error(codes.Internal, "unable to apply hazards")
	}

	return s.status(ctx)
}

func (s *Server) status(_ context.Context) (*structpb.Struct, error) {
	response, err := structpb.NewStruct(report.StatusFields(s.service.Status(), s.service.Reading()))
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode status")
	}

	return response, nil
}

// toOverride converts the SetHazards request into a sensor override.
func toOverride(req *structpb.Struct) (sensor.Override, error) {
	var (
		override sensor.Override
		fields   = req.GetFields()
	)

	if len(fields) == 0 {
		return override, status.Error(codes.InvalidArgument, "gas or temperature_c is required")
	}

	if value, ok := fields[GasField]; ok {
		gas, isBool := value.GetKind().(*structpb.Value_BoolValue)
		if !isBool {
			return override, status.Error(codes.InvalidArgument, "gas must be a boolean")
		}

		override.Gas = &gas.BoolValue
	}

	if value, ok := fields[TemperatureField]; ok {
		temperature, isNumber := value.GetKind().(*structpb.Value_NumberValue)
		if !isNumber {
			return override, status.Error(codes.InvalidArgument, "temperature_c must be a number")
		}

		override.TemperatureC = &temperature.NumberValue
	}

	if err := override.Validate(); err != nil {
		return override, status.Error(codes.InvalidArgument, err.Error())
	}

	return override, nil
}
