// Package panel implements the gRPC transport for the alarm panel.
//
// The PanelService is described by hand with protobuf well-known types as
// messages, so no generated code is needed. The package provides both the
// server adapter around a business-service interface and a thin client.
package panel
