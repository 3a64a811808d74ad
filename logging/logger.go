// Package logging builds the structured loggers the storage components use.
//
// There is no process-wide logger: the caller builds one from a Config and
// hands it to whatever it constructs. Components that are given nothing log
// to Discard().
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel represents logging verbosity
type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

// Config holds logger configuration
type Config struct {
	Level  LogLevel
	Format string    // "json" or "text"
	Output io.Writer // nil means stderr
}

// DefaultConfig logs INFO and above as text to stderr.
func DefaultConfig() Config {
	return Config{Level: LevelInfo, Format: "text"}
}

// ParseLevel accepts the level names in any case; unknown names map to INFO.
func ParseLevel(s string) LogLevel {
	switch LogLevel(strings.ToUpper(s)) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn:
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
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

// New builds a logger from config.
func New(config Config) *slog.Logger {
	writer := config.Output
	if writer == nil {
		writer = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: config.Level.slogLevel()}

	var handler slog.Handler
	if config.Format == "json" {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// WithComponent creates a logger with component/subsystem context.
func WithComponent(l *slog.Logger, component string) *slog.Logger {
	return OrDiscard(l).With("component", component)
}
