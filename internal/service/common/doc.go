// Package common holds helpers shared by the panel clients.
//
// It provides a gRPC client wrapper for the PanelService with per-call
// timeouts and detection of the current system actor for audit logging.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
