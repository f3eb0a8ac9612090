// Package logger provides structured logging for wssviz.
//
// It wraps log/slog:
//
//   - logger.go: handler selection, levels and the process-wide default
//   - context.go: logger, run ID and PID propagation through context
//
// The text handler is used by default when stderr is a terminal and the
// JSON handler otherwise.
package logger
