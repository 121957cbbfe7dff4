// logger package configures the application slog logger and provides a request-scoped logger for HTTP handlers.
//
// dev and test environments use a coloured tint handler, staging and prod use JSON.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

// LevelNone disables logging when passed to InitLogger
const LevelNone = slog.Level(1000)

// ParseLogLevel converts a LOG_LEVEL value to a slog.Level (unknown values default to info)
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none", "off":
		return LevelNone
	default:
		return slog.LevelInfo
	}
}

// InitLogger creates the application logger and sets it as the slog default.
func InitLogger(level slog.Level, environment string) *slog.Logger {
	l := NewLogger(os.Stderr, level, environment)
	slog.SetDefault(l)
	return l
}

// NewLogger creates a logger writing to w.
func NewLogger(w io.Writer, level slog.Level, environment string) *slog.Logger {
	if level == LevelNone {
		return slog.New(slog.DiscardHandler)
	}

	var handler slog.Handler
	switch environment {
	case "prod", "staging":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	default:
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			NoColor:    environment == "test",
		})
	}
	return slog.New(handler)
}

type contextKey struct{ name string }

var (
	loggerKey   = contextKey{"logger"}
	logAttrsKey = contextKey{"log-attrs"}
)

// logAttrs collects attributes added by handlers so they can be included in the final request log line
type logAttrs struct {
	mu    sync.Mutex
	attrs []slog.Attr
}

// ContextWithLogger returns a context carrying the request logger
func ContextWithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// ContextRequestLogger returns the request logger, or the default logger if none is set
func ContextRequestLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// ContextWithLogAttrs adds attributes to the final request log line.
// It is a no-op if the context was not created by RequestLogging
func ContextWithLogAttrs(ctx context.Context, attrs ...slog.Attr) {
	if la, ok := ctx.Value(logAttrsKey).(*logAttrs); ok {
		la.mu.Lock()
		la.attrs = append(la.attrs, attrs...)
		la.mu.Unlock()
	}
}

func contextLogAttrs(ctx context.Context) []slog.Attr {
	la, ok := ctx.Value(logAttrsKey).(*logAttrs)
	if !ok {
		return nil
	}
	la.mu.Lock()
	defer la.mu.Unlock()
	return append([]slog.Attr(nil), la.attrs...)
}
