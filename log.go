package amgo

import (
	"fmt"
	"io"
	"strings"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the structured logger used by a Context.
// A nil *Logger is valid and discards everything.
type Logger = logiface.Logger[*stumpy.Event]

// LogLevel represents amgo log levels.
type LogLevel int32

// Log level constants, from least to most verbose.
const (
	LogQuiet   LogLevel = iota // Print no output
	LogError                   // Something went wrong, recovery possible
	LogWarning                 // Something unexpected, e.g. a handle type conflict
	LogInfo                    // Lifecycle transitions
	LogDebug                   // Pool and thread bookkeeping
	LogTrace                   // Extremely verbose debugging
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch {
	case l <= LogQuiet:
		return "quiet"
	case l == LogError:
		return "error"
	case l == LogWarning:
		return "warning"
	case l == LogInfo:
		return "info"
	case l == LogDebug:
		return "debug"
	default:
		return "trace"
	}
}

// ParseLogLevel parses the names produced by LogLevel.String.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quiet", "off", "none":
		return LogQuiet, nil
	case "error", "err":
		return LogError, nil
	case "warning", "warn":
		return LogWarning, nil
	case "info", "":
		return LogInfo, nil
	case "debug":
		return LogDebug, nil
	case "trace":
		return LogTrace, nil
	}
	return LogQuiet, fmt.Errorf("amgo: unknown log level %q", s)
}

func (l LogLevel) toLogiface() logiface.Level {
	switch {
	case l <= LogQuiet:
		return logiface.LevelDisabled
	case l == LogError:
		return logiface.LevelError
	case l == LogWarning:
		return logiface.LevelWarning
	case l == LogInfo:
		return logiface.LevelInformational
	case l == LogDebug:
		return logiface.LevelDebug
	default:
		return logiface.LevelTrace
	}
}

// NewLogger returns a JSON logger writing events at or above level to w.
// LogQuiet returns nil, which discards everything.
func NewLogger(w io.Writer, level LogLevel) *Logger {
	if level <= LogQuiet || w == nil {
		return nil
	}
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(level.toLogiface()),
	)
}
