package middleware

import (
	"fmt"
	"log/slog"

	"github.com/atlanticdynamic/mcpregistry/internal/config"
	"github.com/atlanticdynamic/mcpregistry/internal/server/runnables/listeners/http/middleware/headers"
	"github.com/atlanticdynamic/mcpregistry/internal/server/runnables/listeners/http/middleware/logger"
)

// ForRoute builds the chain for one route from its options. The access log runs first so
// it sees the final status of every response.
func ForRoute(opts config.HTTPOptions, log *slog.Logger) ([]Middleware, error) {
	var chain []Middleware

	if opts.AccessLog {
		chain = append(chain, logger.NewAccessLog(log).Middleware())
	}

	if len(opts.Headers) > 0 {
		hm, err := headers.NewHeadersMiddleware(opts.Headers)
		if err != nil {
			return nil, fmt.Errorf("failed to create headers middleware: %w", err)
		}
		chain = append(chain, hm.Middleware())
	}

	return chain, nil
}
