// Package logger provides leveled logging with debug, info, warn, and error
// levels. Call sites use printf-style package functions; output goes through
// a log/slog handler so the format stays structured in both text and JSON.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(newLogger("info", "text", os.Stderr))
}

// Init configures the default logger. Level is one of debug, info, warn,
// error (unknown values fall back to info); format is text or json.
func Init(level, format string) {
	current.Store(newLogger(level, format, os.Stderr))
}

func newLogger(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// Debug logs a message at debug level.
func Debug(format string, args ...any) {
	current.Load().Debug(fmt.Sprintf(format, args...))
}

// Info logs a message at info level.
func Info(format string, args ...any) {
	current.Load().Info(fmt.Sprintf(format, args...))
}

// Warn logs a message at warn level.
func Warn(format string, args ...any) {
	current.Load().Warn(fmt.Sprintf(format, args...))
}

// Error logs a message at error level.
func Error(format string, args ...any) {
	current.Load().Error(fmt.Sprintf(format, args...))
}

// Fatal logs a message at error level and exits.
func Fatal(format string, args ...any) {
	current.Load().Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
