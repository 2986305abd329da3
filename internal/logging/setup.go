// Package logging builds the slog handlers used by the CLI, the registry and named logger
// collaborators.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/atlanticdynamic/mcpregistry/internal/logging/writers"
)

// Options selects the handler produced by NewHandler.
type Options struct {
	Level  string
	Format string
	// Output is a writers.CreateWriter spec. Empty means stderr, which keeps stdout free for
	// the stdio protocol channel.
	Output string
}

// NewHandler creates a text or JSON handler for the given options.
func NewHandler(opts Options) (slog.Handler, error) {
	var w io.Writer = os.Stderr
	if opts.Output != "" {
		created, err := writers.CreateWriter(opts.Output)
		if err != nil {
			return nil, err
		}
		w = created
	}

	if strings.EqualFold(opts.Format, "json") {
		return SetupHandlerJSON(opts.Level, w), nil
	}
	return SetupHandlerText(opts.Level, w), nil
}

// SetupHandlerText configures a text slog handler with the provided writer and log level
func SetupHandlerText(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stderr
	}

	reportCaller := false
	reportTimestamp := false
	lvl := log.InfoLevel
	switch strings.ToLower(logLevel) {
	case "trace":
		reportCaller = true
		reportTimestamp = true
		lvl = log.DebugLevel
	case "debug":
		reportTimestamp = true
		lvl = log.DebugLevel
	case "warn", "warning":
		lvl = log.WarnLevel
	case "error":
		lvl = log.ErrorLevel
	}

	return log.NewWithOptions(writer, log.Options{
		ReportTimestamp: reportTimestamp,
		ReportCaller:    reportCaller,
		Level:           lvl,
	})
}

// SetupHandlerJSON configures a JSON slog handler with the provided writer and log level
func SetupHandlerJSON(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stderr
	}

	return slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level:     ParseLevel(logLevel),
		AddSource: strings.EqualFold(logLevel, "trace"),
	})
}

// ParseLevel maps a configured level name onto slog. Trace collapses into debug.
func ParseLevel(logLevel string) slog.Level {
	switch strings.ToLower(logLevel) {
	case "trace", "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger installs the default logger for the process.
func SetupLogger(opts Options) error {
	handler, err := NewHandler(opts)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(handler))
	return nil
}
