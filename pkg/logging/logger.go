package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// LevelTrace is below DEBUG and only enabled with -vv.
const LevelTrace = slog.LevelDebug - 4

type contextKey string

const (
	runIDKey     contextKey = "runID"
	requestIDKey contextKey = "requestID"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	// Console output goes to stderr so stdout stays clean for commands and JSON
	SetOutput(os.Stderr, slog.LevelInfo)
}

// SetOutput replaces the handler with a compact handler writing to w.
func SetOutput(w io.Writer, level slog.Level) {
	logger.Store(slog.New(NewCompactHandler(w, &slog.HandlerOptions{Level: level})))
}

// SetLevel changes the logging level of the console handler
func SetLevel(level slog.Level) {
	SetOutput(os.Stderr, level)
}

// SetJSONOutput switches to JSON format output
func SetJSONOutput(level slog.Level) {
	logger.Store(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// LevelForVerbosity maps a -v count to a level.
func LevelForVerbosity(count int) slog.Level {
	switch {
	case count >= 2:
		return LevelTrace
	case count == 1:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// New returns a logger tagged with the component name.
func New(component string) *slog.Logger {
	return logger.Load().With("component", component)
}

// WithRunID adds a planning run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// GetRunID retrieves the planning run ID from context
func GetRunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequestID adds an HTTP request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// withIDs prepends the run and request IDs found in ctx
func withIDs(ctx context.Context, args []any) []any {
	if id := GetRequestID(ctx); id != "" {
		args = append([]any{"requestID", id}, args...)
	}
	if id := GetRunID(ctx); id != "" {
		args = append([]any{"runID", id}, args...)
	}
	return args
}

// Trace logs at TRACE level (very verbose, debug-time only)
func Trace(msg string, args ...any) {
	logger.Load().Log(context.Background(), LevelTrace, msg, args...)
}

// TraceContext logs at TRACE level with context
func TraceContext(ctx context.Context, msg string, args ...any) {
	logger.Load().Log(ctx, LevelTrace, msg, withIDs(ctx, args)...)
}

// Debug logs at DEBUG level (internal component behavior)
func Debug(msg string, args ...any) {
	logger.Load().Debug(msg, args...)
}

// DebugContext logs at DEBUG level with context
func DebugContext(ctx context.Context, msg string, args ...any) {
	logger.Load().DebugContext(ctx, msg, withIDs(ctx, args)...)
}

// Info logs at INFO level (user-facing operations)
func Info(msg string, args ...any) {
	logger.Load().Info(msg, args...)
}

// InfoContext logs at INFO level with context
func InfoContext(ctx context.Context, msg string, args ...any) {
	logger.Load().InfoContext(ctx, msg, withIDs(ctx, args)...)
}

// Warn logs at WARN level (should be monitored)
func Warn(msg string, args ...any) {
	logger.Load().Warn(msg, args...)
}

// WarnContext logs at WARN level with context
func WarnContext(ctx context.Context, msg string, args ...any) {
	logger.Load().WarnContext(ctx, msg, withIDs(ctx, args)...)
}

// Error logs at ERROR level (logical bugs that shouldn't happen)
func Error(msg string, args ...any) {
	logger.Load().Error(msg, args...)
}

// ErrorContext logs at ERROR level with context
func ErrorContext(ctx context.Context, msg string, args ...any) {
	logger.Load().ErrorContext(ctx, msg, withIDs(ctx, args)...)
}
