package panel

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// PanelServiceClient is the client API of the PanelService.
type PanelServiceClient struct {
	// cc is the connection the calls are made on.
	cc grpc.ClientConnInterface
}

// NewPanelServiceClient creates a client bound to the connection.
func NewPanelServiceClient(cc grpc.ClientConnInterface) *PanelServiceClient {
	return &PanelServiceClient{cc: cc}
}

// GetStatus calls PanelService.GetStatus.
func (c *PanelServiceClient) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetStatusMethod, new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// PressKeys calls PanelService.PressKeys.
func (c *PanelServiceClient) PressKeys(
	ctx context.Context,
	keys string,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PressKeysMethod, wrapperspb.String(keys), out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// GetEventLog calls PanelService.GetEventLog.
func (c *PanelServiceClient) GetEventLog(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetEventLogMethod, new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// SetHazards calls PanelService.SetHazards.
func (c *PanelServiceClient) SetHazards(
	ctx context.Context,
	req *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SetHazardsMethod, req, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
