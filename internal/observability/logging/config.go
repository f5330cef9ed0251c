package logging

import "fmt"

// Level names accepted by --log-level
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Config mirrors the --log-format, --log-level and --log-output flags
type Config struct {
	Format string // pretty, jsonl or none
	Level  string
	Output string // stderr or a file path
}

// severity orders levels; a logger drops anything below its minimum
type severity int

const (
	sevDebug severity = iota
	sevInfo
	sevWarn
	sevError
)

func parseSeverity(level string) (severity, error) {
	switch level {
	case LevelDebug:
		return sevDebug, nil
	case LevelInfo:
		return sevInfo, nil
	case "", LevelWarn:
		return sevWarn, nil
	case LevelError:
		return sevError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", level)
	}
}

func (s severity) String() string {
	switch s {
	case sevDebug:
		return LevelDebug
	case sevInfo:
		return LevelInfo
	case sevWarn:
		return LevelWarn
	default:
		return LevelError
	}
}
