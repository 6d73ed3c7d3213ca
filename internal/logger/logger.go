// Package logger provides leveled logging for the panelcert agent.
//
// Logging goes to stderr, separate from the user-facing output that goes
// to stdout. The agent emits a structured line at every stage boundary;
// when a run fails in cron these lines plus the diagnostic screenshot are
// the whole post-mortem, so Info is the default level. --verbose enables
// Debug for per-interaction detail.
//
// The package wraps rs/zerolog behind the same Init/Debug/Info/Warn/Error
// surface used elsewhere in the codebase:
//
//	logger.Init(verbose)
//	logger.Info("Starting login to control panel")
//	logger.Debug("Filling field %s", name)
//	logger.WarnFields("Fallback primary domain", map[string]interface{}{
//	    "domain_id": id,
//	})
//
// Use the output package, not this one, for user-facing messages.
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu  sync.Mutex
	log = newLogger(os.Stderr, zerolog.InfoLevel)
)

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

// Init initializes the global logger with the specified verbosity.
// When verbose is true, Debug level is enabled. Default is Info.
func Init(verbose bool) {
	mu.Lock()
	defer mu.Unlock()

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log = newLogger(os.Stderr, level)
}

// SetOutput redirects log output. Useful for testing. Default is os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	log = newLogger(w, log.GetLevel())
}

// WithRun attaches a run id to every subsequent log line.
func WithRun(runID string) {
	mu.Lock()
	defer mu.Unlock()
	log = log.With().Str("run_id", runID).Logger()
}

func get() *zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	l := log
	return &l
}

// Debug logs a debug message. Only shown when verbose mode is enabled.
func Debug(format string, args ...interface{}) {
	get().Debug().Msgf(format, args...)
}

// Info logs an informational message.
func Info(format string, args ...interface{}) {
	get().Info().Msgf(format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	get().Warn().Msgf(format, args...)
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	get().Error().Msgf(format, args...)
}

// DebugFields logs a debug message with structured fields.
func DebugFields(msg string, fields map[string]interface{}) {
	get().Debug().Fields(fields).Msg(msg)
}

// InfoFields logs an informational message with structured fields.
func InfoFields(msg string, fields map[string]interface{}) {
	get().Info().Fields(fields).Msg(msg)
}

// WarnFields logs a warning message with structured fields.
func WarnFields(msg string, fields map[string]interface{}) {
	get().Warn().Fields(fields).Msg(msg)
}

// ErrorFields logs an error message with structured fields.
func ErrorFields(msg string, fields map[string]interface{}) {
	get().Error().Fields(fields).Msg(msg)
}

// LogError logs an error with additional context message.
func LogError(err error, msg string) {
	if err == nil {
		return
	}
	get().Error().Err(err).Msg(msg)
}
