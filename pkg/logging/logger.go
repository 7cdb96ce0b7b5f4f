// Package logging provides structured logging for the trackdrive simulator.
// It wraps Go's standard slog package so every component logs JSON with the
// driving session ID attached. Non-finite numbers, which JSON cannot carry,
// are logged as strings.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Logger wraps slog.Logger with session-aware helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger writing JSON to stderr.
// The log level can be controlled via the TRACKDRIVE_LOG_LEVEL environment variable.
// Valid levels: DEBUG, INFO, WARN, ERROR. Defaults to INFO.
//
// Stdout is left to the terminal renderer, which owns the speedometer line.
func NewLogger() *Logger {
	return NewLoggerWithWriter(os.Stderr)
}

// NewLoggerWithWriter creates a Logger that writes JSON records to w.
func NewLoggerWithWriter(w io.Writer) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       getLogLevelFromEnv(),
		ReplaceAttr: formatAttributes,
	})
	return &Logger{slog.New(handler)}
}

// LogWithContext logs a message with automatic session ID extraction from context.
func (l *Logger) LogWithContext(ctx context.Context, level slog.Level, msg string, args ...any) {
	if sessionID := GetSessionID(ctx); sessionID != "" {
		args = append(args, "session_id", sessionID)
	}
	l.Log(ctx, level, msg, args...)
}

// Info logs an informational message with context.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelInfo, msg, args...)
}

// Warn logs a warning message with context.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelWarn, msg, args...)
}

// Error logs an error message with context and proper error formatting.
func (l *Logger) Error(ctx context.Context, msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	l.LogWithContext(ctx, slog.LevelError, msg, args...)
}

// Debug logs a debug message with context.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelDebug, msg, args...)
}

type sessionIDKey struct{}

// WithSessionID adds a session ID to the context.
// If no session ID is provided, a new one will be generated.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if sessionID == "" {
		sessionID = GenerateSessionID()
	}
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}

// GetSessionID extracts the session ID from the context.
// Returns empty string if no session ID is present.
func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey{}).(string); ok {
		return id
	}
	return ""
}

// GenerateSessionID creates a new random session ID.
func GenerateSessionID() string {
	return uuid.NewString()
}

func getLogLevelFromEnv() slog.Level {
	levelStr := strings.ToUpper(os.Getenv("TRACKDRIVE_LOG_LEVEL"))
	switch levelStr {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// formatAttributes rewrites NaN and infinite values, including vector
// components, as strings. A chassis that blew up is still worth a log line.
func formatAttributes(groups []string, a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindFloat64:
		if f := a.Value.Float64(); math.IsNaN(f) || math.IsInf(f, 0) {
			return slog.String(a.Key, strconv.FormatFloat(f, 'g', -1, 64))
		}
	case slog.KindAny:
		if v, ok := a.Value.Any().(mgl64.Vec3); ok && !finite(v[:]...) {
			return slog.String(a.Key, fmt.Sprint(v))
		}
	}
	return a
}

func finite(fs ...float64) bool {
	for _, f := range fs {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
