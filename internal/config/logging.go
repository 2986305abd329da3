package config

// Logging selects the process log handler.
type Logging struct {
	Format LogFormat `toml:"format"`
	Level  LogLevel  `toml:"level"`
	// Output is a stream name or file path; empty means stderr.
	Output string `toml:"output"`
}

// LogFormat represents the logging output format
type LogFormat string

// LogLevel represents the logging verbosity level
type LogLevel string

const (
	LogFormatUnspecified LogFormat = ""
	LogFormatText        LogFormat = "text"
	LogFormatJSON        LogFormat = "json"
)

const (
	LogLevelUnspecified LogLevel = ""
	LogLevelTrace       LogLevel = "trace"
	LogLevelDebug       LogLevel = "debug"
	LogLevelInfo        LogLevel = "info"
	LogLevelWarn        LogLevel = "warn"
	LogLevelError       LogLevel = "error"
)

// IsValid checks if the LogFormat is valid
func (f LogFormat) IsValid() bool {
	switch f {
	case LogFormatUnspecified, LogFormatText, LogFormatJSON:
		return true
	default:
		return false
	}
}

// IsValid checks if the LogLevel is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelUnspecified, LogLevelTrace, LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	default:
		return false
	}
}

// String returns the level, defaulting to info.
func (l LogLevel) String() string {
	if l == LogLevelUnspecified {
		return string(LogLevelInfo)
	}
	return string(l)
}

// String returns the format, defaulting to text.
func (f LogFormat) String() string {
	if f == LogFormatUnspecified {
		return string(LogFormatText)
	}
	return string(f)
}
