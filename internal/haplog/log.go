// Package haplog is the service's single structured-logging entry point,
// matching the teacher's practice of one logger construction site per
// binary rather than per-package ad hoc loggers. It carries structured
// fields the way the original implementation's JSONFormatter did, built
// on the standard library's log/slog rather than a third-party logger:
// no structured logging package appears anywhere in the example pack, so
// this is one of the few ambient components grounded on the standard
// library by necessity rather than preference (see DESIGN.md).
package haplog

import (
	"io"
	"log/slog"
	"os"
)

// New builds a JSON structured logger at level writing to w (or stderr
// when w is nil), tagged with a fixed "component" field so multi-binary
// log aggregation can tell cmd/hapticd and cmd/hapticctl apart.
func New(levelName, component string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(levelName)})
	return slog.New(handler).With("component", component)
}

func parseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
