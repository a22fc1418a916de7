// Package logging provides the shared zerolog setup for aero-scope.
//
// Initialize once from main:
//
//	logging.Init(cfg.Logging.Level, cfg.Logging.Format)
//
// then derive component loggers:
//
//	log := logging.Component("tracker")
//	log.Info().Int("flights", n).Msg("refresh complete")
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu  sync.RWMutex
	log = newLogger("info", "console", os.Stderr)
)

// Init configures the global logger. Safe to call more than once; later
// calls reconfigure it.
func Init(level, format string) {
	mu.Lock()
	defer mu.Unlock()
	log = newLogger(level, format, os.Stderr)
}

// InitWriter is Init with an explicit output, used by tests to capture
// log output.
func InitWriter(level, format string, out io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	log = newLogger(level, format, out)
}

func newLogger(level, format string, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var w io.Writer = out
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	return zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Logger returns the global logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Component returns a child logger tagged with a component name.
func Component(name string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log.With().Str("component", name).Logger()
}
