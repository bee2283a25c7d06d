package panel

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/oshokin/alarm-panel/internal/logger"
)

// ActorMetadataKey carries the calling user@host for the audit log.
const ActorMetadataKey = "x-alarm-actor"

// ActorFromContext returns the actor sent by the client, or "unknown".
func ActorFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "unknown"
	}

	values := md.Get(ActorMetadataKey)
	if len(values) == 0 || values[0] == "" {
		return "unknown"
	}

	return values[0]
}

// AuditInterceptor logs every call with its actor, outcome and duration.
// State-changing calls are logged at info level, queries at debug level.
func AuditInterceptor(base context.Context) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		started := time.Now()
		response, err := handler(ctx, req)

		kvs := []any{
			"method", info.FullMethod,
			"actor", ActorFromContext(ctx),
			"code", status.Code(err).String(),
			"duration", time.Since(started).String(),
		}

		switch info.FullMethod {
		case PressKeysMethod, SetHazardsMethod:
			logger.InfoKV(base, "Panel command received", kvs...)
		default:
			logger.DebugKV(base, "Panel query received", kvs...)
		}

		return response, err
	}
}
