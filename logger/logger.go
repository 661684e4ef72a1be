//go:build linux

package logger

import (
	"log/slog"
	"os"
)

// LogFormat selects the wire format used by the structured logger.
type LogFormat int

const (
	LogText LogFormat = iota
	LogJSON
)

// LoggerOpts configures the process-wide logger.
type LoggerOpts struct {
	LogLevel  slog.Level
	LogFormat LogFormat
}

// Log is the process-wide logger, valid once CreateLogger has run.
var Log *slog.Logger

// CreateLogger builds (once) the global structured logger used by the
// supervisor and the container initializer, tagging every record with the
// current process ID so parent and child log lines stay distinguishable.
func CreateLogger(opts *LoggerOpts) *slog.Logger {
	if Log != nil {
		return Log
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.LogLevel}

	var handler slog.Handler
	switch opts.LogFormat {
	case LogJSON:
		handler = slog.NewJSONHandler(os.Stdout, handlerOpts)
	default:
		handler = slog.NewTextHandler(os.Stdout, handlerOpts)
	}

	Log = slog.New(handler).With(slog.Int("pid", os.Getpid()))
	slog.SetDefault(Log)
	return Log
}
