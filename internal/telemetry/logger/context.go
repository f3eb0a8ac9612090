package logger

import "context"

// contextKey is a type for context keys to avoid collisions.
type contextKey string

const (
	loggerKey contextKey = "wssviz.logger"
	runIDKey  contextKey = "wssviz.run_id"
	pidKey    contextKey = "wssviz.pid"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithRunID adds a render run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext extracts the run ID from context.
func RunIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}

// WithPID adds the sampled process ID to the context.
func WithPID(ctx context.Context, pid string) context.Context {
	return context.WithValue(ctx, pidKey, pid)
}

// PIDFromContext extracts the process ID from context.
func PIDFromContext(ctx context.Context) string {
	if pid, ok := ctx.Value(pidKey).(string); ok {
		return pid
	}
	return ""
}

// L is a shorthand for FromContext that also enriches the logger
// with the run ID and PID from the context.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)

	if id := RunIDFromContext(ctx); id != "" {
		l = l.With("run_id", id)
	}
	if pid := PIDFromContext(ctx); pid != "" {
		l = l.With("pid", pid)
	}

	return l
}
