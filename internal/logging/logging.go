// Package logging configures structured logging for Vectorium.
//
// All log output goes to stderr: stdout belongs to the MCP stdio transport
// and must carry nothing but JSON-RPC frames.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Setup builds a logger writing to w at the given level and installs it
// as the process default. A JSON handler is used for machine consumption;
// when w is an interactive terminal a text handler is used instead.
func Setup(w io.Writer, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// SetupDefault configures stderr logging at the given level.
func SetupDefault(level string) *slog.Logger {
	return Setup(os.Stderr, level)
}

// ParseLevel converts a string level to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
