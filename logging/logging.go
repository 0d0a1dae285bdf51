// Package logging builds slog loggers and adapts them to the variadic logger
// interfaces used by the api, server and client packages.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Supported formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New returns a logger writing to w at the given level ("debug", "info",
// "warn" or "error") in the given format ("text" or "json").
func New(w io.Writer, level string, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "", FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type key struct{}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, key{}, logger)
}

// FromContext returns the logger carried by ctx, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(key{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// Adapter exposes a slog logger through Trace/Info/Error methods taking a
// message followed by optional data.
type Adapter struct {
	Logger *slog.Logger
}

// Trace logs at debug level.
func (a Adapter) Trace(messages ...any) {
	a.log(slog.LevelDebug, messages)
}

// Info logs at info level.
func (a Adapter) Info(messages ...any) {
	a.log(slog.LevelInfo, messages)
}

// Error logs at error level.
func (a Adapter) Error(messages ...any) {
	a.log(slog.LevelError, messages)
}

func (a Adapter) log(level slog.Level, messages []any) {
	if len(messages) == 0 {
		return
	}
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}

	msg := fmt.Sprint(messages[0])
	switch rest := messages[1:]; len(rest) {
	case 0:
		logger.Log(context.Background(), level, msg)
	case 1:
		logger.Log(context.Background(), level, msg, slog.Any("data", rest[0]))
	default:
		logger.Log(context.Background(), level, msg, slog.Any("data", rest))
	}
}
