// pkg/logging/logger.go

// Package logging provides structured JSON logging for arena matches.
// It wraps slog with match IDs carried through context, per-component
// child loggers and float formatting that survives NaN and infinities.
package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
)

// LevelEnvVar selects the minimum level of loggers built by NewLogger
const LevelEnvVar = "TANKWARS_LOG_LEVEL"

// Logger wraps slog.Logger with match ID support
type Logger struct {
	*slog.Logger
}

// NewLogger creates a JSON logger on stdout. The level comes from
// TANKWARS_LOG_LEVEL (DEBUG, INFO, WARN, ERROR) and defaults to INFO.
func NewLogger() *Logger {
	return NewLoggerWithWriter(os.Stdout, getLogLevelFromEnv())
}

// NewLoggerWithWriter creates a JSON logger writing to w at the given level
func NewLoggerWithWriter(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: formatFloats,
	})
	return &Logger{slog.New(handler)}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return NewLoggerWithWriter(io.Discard, slog.LevelError+1)
}

// Component returns a child logger tagged with the component name
func (l *Logger) Component(name string) *Logger {
	return &Logger{l.Logger.With("component", name)}
}

// LogWithContext logs a message, adding the match ID from ctx if present
func (l *Logger) LogWithContext(ctx context.Context, level slog.Level, msg string, args ...any) {
	if matchID := GetMatchID(ctx); matchID != "" {
		args = append(args, "match_id", matchID)
	}
	l.Log(ctx, level, msg, args...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelInfo, msg, args...)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelWarn, msg, args...)
}

// Error logs at error level with err rendered under the "error" key
func (l *Logger) Error(ctx context.Context, msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	l.LogWithContext(ctx, slog.LevelError, msg, args...)
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelDebug, msg, args...)
}

type matchIDKey struct{}

// WithMatchID stores a match ID in ctx, generating one when id is empty
func WithMatchID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = GenerateMatchID()
	}
	return context.WithValue(ctx, matchIDKey{}, id)
}

// GetMatchID returns the match ID stored in ctx or ""
func GetMatchID(ctx context.Context) string {
	if id, ok := ctx.Value(matchIDKey{}).(string); ok {
		return id
	}
	return ""
}

// GenerateMatchID returns 16 random hex characters
func GenerateMatchID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func getLogLevelFromEnv() slog.Level {
	switch strings.ToUpper(os.Getenv(LevelEnvVar)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// formatFloats renders non-finite floats as strings. Death times of living
// robots are +Inf and bad controller output can be NaN, neither of which
// encodes as JSON.
func formatFloats(groups []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindFloat64 {
		return a
	}
	f := a.Value.Float64()
	switch {
	case math.IsNaN(f):
		return slog.String(a.Key, "NaN")
	case math.IsInf(f, 1):
		return slog.String(a.Key, "+Inf")
	case math.IsInf(f, -1):
		return slog.String(a.Key, "-Inf")
	}
	return a
}

// WrapError adds formatted context to err, returning nil for a nil err
func WrapError(err error, context string, args ...any) error {
	if err == nil {
		return nil
	}
	if len(args) > 0 {
		context = fmt.Sprintf(context, args...)
	}
	return fmt.Errorf("%s: %w", context, err)
}
