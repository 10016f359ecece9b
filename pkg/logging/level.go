package logging

import (
	"os"
	"sync/atomic"

	"github.com/buildfilter/buildfilter/pkg/buildfilterenv"
)

// Level represents a log level. Its value hierarchy is designed to be ordered
// and comparable by value.
type Level uint

const (
	// LevelDisabled indicates that logging is completely disabled.
	LevelDisabled Level = iota
	// LevelError indicates that only fatal errors are logged.
	LevelError
	// LevelWarn indicates that both fatal and non-fatal errors are logged.
	LevelWarn
	// LevelInfo indicates that basic execution information is logged (in
	// addition to all errors).
	LevelInfo
	// LevelDebug indicates that advanced execution information is logged (in
	// addition to basic information and all errors).
	LevelDebug
	// LevelTrace indicates that low-level execution information is logged (in
	// addition to all other execution information and all errors).
	LevelTrace
)

// NameToLevel converts a string-based representation of a log level to the
// appropriate Level value. It returns a boolean indicating whether or not the
// conversion was valid. If the name is invalid, LevelDisabled is returned.
func NameToLevel(name string) (Level, bool) {
	switch name {
	case "disabled":
		return LevelDisabled, true
	case "error":
		return LevelError, true
	case "warn":
		return LevelWarn, true
	case "info":
		return LevelInfo, true
	case "debug":
		return LevelDebug, true
	case "trace":
		return LevelTrace, true
	default:
		return LevelDisabled, false
	}
}

// String provides a human-readable representation of a log level.
func (l Level) String() string {
	switch l {
	case LevelDisabled:
		return "disabled"
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	case LevelTrace:
		return "trace"
	default:
		return "unknown"
	}
}

// currentLevel is the process-wide active log level. Every Logger checks
// it on each call rather than storing its own copy, so a single SetLevel
// call takes effect for every existing sublogger immediately.
var currentLevel atomic.Uint32

func init() {
	currentLevel.Store(uint32(defaultLevel()))
}

// defaultLevel resolves the initial level: the BUILDFILTER_LOG_LEVEL
// environment variable if it names a valid level, otherwise LevelDebug
// when BUILDFILTER_DEBUG is set, otherwise LevelInfo.
func defaultLevel() Level {
	if raw := os.Getenv("BUILDFILTER_LOG_LEVEL"); raw != "" {
		if level, ok := NameToLevel(raw); ok {
			return level
		}
	}
	if buildfilterenv.DebugEnabled {
		return LevelDebug
	}
	return LevelInfo
}

// SetLevel overrides the active log level for every Logger in the
// process. Hosts that expose a --log-level flag call this once during
// startup.
func SetLevel(level Level) {
	currentLevel.Store(uint32(level))
}

// CurrentLevel returns the currently active log level.
func CurrentLevel() Level {
	return Level(currentLevel.Load())
}
