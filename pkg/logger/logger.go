package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type contextKey struct{}

func Setup(level string, format string) {
	SetupWriter(os.Stdout, level, format)
}

// SetupWriter installs the default slog logger writing to w.
func SetupWriter(w io.Writer, level string, format string) {
	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}
	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func WithInvocationID(ctx context.Context, invocationID string) context.Context {
	return context.WithValue(ctx, contextKey{}, invocationID)
}

func InvocationID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if invocationID, ok := ctx.Value(contextKey{}).(string); ok {
		logger = logger.With("invocation_id", invocationID)
	}
	return logger
}

func WithComponent(component string) *slog.Logger {
	return slog.Default().With("component", component)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
