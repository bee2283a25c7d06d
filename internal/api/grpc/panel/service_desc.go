package panel

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "alarmpanel.v1.PanelService"

// Full method names of the PanelService.
const (
	GetStatusMethod   = "/" + ServiceName + "/GetStatus"
	PressKeysMethod   = "/" + ServiceName + "/PressKeys"
	GetEventLogMethod = "/" + ServiceName + "/GetEventLog"
	SetHazardsMethod  = "/" + ServiceName + "/SetHazards"
)

// PanelServiceServer is the server API of the PanelService.
type PanelServiceServer interface {
	// GetStatus returns the machine output and the latest sensor reading.
	GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	// PressKeys queues a key sequence such as "1805#".
	PressKeys(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	// GetEventLog returns the trigger timestamps oldest first.
	GetEventLog(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	// SetHazards applies simulated sensor values.
	SetHazards(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the PanelService for grpc.Server registration.
//
//nolint:gochecknoglobals // Registration requires a package-level descriptor.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PanelServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetStatus",
			Handler:    unaryHandler(GetStatusMethod, newEmpty, PanelServiceServer.GetStatus),
		},
		{
			MethodName: "PressKeys",
			Handler:    unaryHandler(PressKeysMethod, newStringValue, PanelServiceServer.PressKeys),
		},
		{
			MethodName: "GetEventLog",
			Handler:    unaryHandler(GetEventLogMethod, newEmpty, PanelServiceServer.GetEventLog),
		},
		{
			MethodName: "SetHazards",
			Handler:    unaryHandler(SetHazardsMethod, newStruct, PanelServiceServer.SetHazards),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "alarmpanel/v1/panel.proto",
}

// Register attaches the PanelService implementation to a gRPC server.
func Register(registrar grpc.ServiceRegistrar, server PanelServiceServer) {
	registrar.RegisterService(&ServiceDesc, server)
}

// unaryHandler builds a grpc.MethodHandler that decodes the request into a
// fresh message and routes it through the optional interceptor.
func unaryHandler[Req proto.Message](
	fullMethod string,
	newRequest func() Req,
	call func(PanelServiceServer, context.Context, Req) (*structpb.Struct, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newRequest()
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(PanelServiceServer)

		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(Req)

			return call(server, ctx, typed)
		}

		return interceptor(ctx, in, info, handler)
	}
}

func newEmpty() *emptypb.Empty { return new(emptypb.Empty) }

func newStringValue() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }

func newStruct() *structpb.Struct { return new(structpb.Struct) }
