// Package logging provides centralized logging functionality for quill.
//
// Logs are written to stderr so that command output on stdout (issue URLs,
// drafts) stays machine readable. LOG_LEVEL selects the level and
// LOG_FORMAT=json switches from text to JSON records.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug for detailed troubleshooting information, including raw AI payloads.
	LevelDebug LogLevel = "debug"
	// LevelInfo for general operational information.
	LevelInfo LogLevel = "info"
	// LevelWarn for soft misses and other degraded results.
	LevelWarn LogLevel = "warn"
	// LevelError for failed submissions.
	LevelError LogLevel = "error"
)

// Options controls the handler built by Setup.
type Options struct {
	Level LogLevel
	JSON  bool
}

var defaultLogger *slog.Logger

func init() {
	Setup(os.Stderr, Options{
		Level: LogLevel(os.Getenv("LOG_LEVEL")),
		JSON:  strings.EqualFold(os.Getenv("LOG_FORMAT"), "json"),
	})
}

// ParseLevel maps a level name to a slog level. Unknown or empty names give info.
func ParseLevel(level LogLevel) slog.Level {
	switch LogLevel(strings.ToLower(strings.TrimSpace(string(level)))) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup replaces the default logger.
func Setup(w io.Writer, opts Options) {
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// SetupLogger configures a text logger with the specified output and level.
func SetupLogger(w io.Writer, level LogLevel) {
	Setup(w, Options{Level: level})
}

// Debug logs a message at debug level.
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

// Info logs a message at info level.
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

// Warn logs a message at warn level.
func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

// Error logs a message at error level.
func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

// GetLogger returns the default logger.
func GetLogger() *slog.Logger {
	return defaultLogger
}

// MaskSensitive masks credentials for logging.
func MaskSensitive(value string) string {
	if value == "" {
		return "<not set>"
	}
	if len(value) <= 4 {
		return "<set>"
	}
	return value[:4] + "..." + strings.Repeat("*", 3)
}

// Truncate shortens long payloads (AI responses, descriptions) for log records.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "…"
}
