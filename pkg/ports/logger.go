// Package ports defines the interfaces the playback core and its host depend
// on. Concrete implementations live under pkg/adapters.
package ports

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug is for per-unit details from the decode worker and the
	// scheduler (dropped units, missed frames, feed activity).
	LevelDebug LogLevel = iota
	// LevelInfo is for host-level progress such as a video finishing loading.
	LevelInfo
	// LevelWarn is for conditions that remove a single playback instance
	// while the rest of the host keeps running.
	LevelWarn
	// LevelError is for lifecycle violations (missing render target,
	// a worker that is already gone).
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseLogLevel parses a string into a LogLevel. Unknown values map to
// LevelInfo.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	case "quiet":
		return LevelQuiet
	default:
		return LevelInfo
	}
}

// Logger abstracts logging operations with multi-language support.
// The msg parameter is an English message key that implementations may
// translate before formatting it with args.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with the
	// component name ("worker", "playback", ...).
	WithComponent(component string) Logger
}
