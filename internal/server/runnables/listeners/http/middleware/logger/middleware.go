// Package logger writes one access log record per HTTP request.
package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/robbyt/go-supervisor/runnables/httpserver"
)

// lgr is implemented by slog.Logger
type lgr interface {
	LogAttrs(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr)
}

type AccessLog struct {
	logger lgr
}

// NewAccessLog creates the middleware. A nil logger uses the process default.
func NewAccessLog(logger *slog.Logger) *AccessLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccessLog{logger: logger.WithGroup("http")}
}

// Middleware returns the middleware function
func (al *AccessLog) Middleware() httpserver.HandlerFunc {
	return func(rp *httpserver.RequestProcessor) {
		start := time.Now()

		// process the other middleware, and the endpoint handler
		rp.Next()

		r := rp.Request()
		rw := rp.Writer()
		status := rw.Status()

		attrs := []slog.Attr{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Int("size", rw.Size()),
			slog.Duration("duration", time.Since(start)),
		}
		if id := r.Header.Get("Mcp-Session-Id"); id != "" {
			attrs = append(attrs, slog.String("session_id", id))
		}
		al.Log(r.Context(), status, attrs)
	}
}

// Log writes the entry at a level derived from the status code.
func (al *AccessLog) Log(ctx context.Context, status int, attrs []slog.Attr) {
	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(ctx, level, "HTTP request", attrs...)
}
