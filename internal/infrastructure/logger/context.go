package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	commandIDKey contextKey = "command_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithCommandID tags ctx with the id of the command being executed and
// returns a logger carrying the same field.
func WithCommandID(ctx context.Context, logger *zap.Logger, commandID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, commandIDKey, commandID)
	enriched := logger.With(zap.String("command_id", commandID))
	return WithContext(ctx, enriched), enriched
}

// GetCommandID retrieves the command id from context
func GetCommandID(ctx context.Context) string {
	if id, ok := ctx.Value(commandIDKey).(string); ok {
		return id
	}
	return ""
}
