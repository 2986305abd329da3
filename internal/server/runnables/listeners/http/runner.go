// Package http builds one go-supervisor HTTP server per configured listener and mounts the
// registry's routes on it.
package http

import (
	"fmt"
	"log/slog"

	"github.com/robbyt/go-supervisor/runnables/httpserver"
	"github.com/robbyt/go-supervisor/supervisor"

	"github.com/atlanticdynamic/mcpregistry/internal/config"
	lhttpserver "github.com/atlanticdynamic/mcpregistry/internal/server/runnables/listeners/http/httpserver"
)

// RouteSource provides the routes mounted on a listener.
type RouteSource interface {
	RoutesForListener(id string) []httpserver.Route
}

// Runner holds the HTTP servers of every listener that has at least one route.
type Runner struct {
	servers []*lhttpserver.HTTPServer
	logger  *slog.Logger
}

// NewRunner creates a server per listener. Listeners without routes are skipped because
// go-supervisor's httpserver needs at least one.
func NewRunner(listeners []config.Listener, routes RouteSource, options ...Option) (*Runner, error) {
	r := &Runner{
		logger: slog.Default().WithGroup("http.Runner"),
	}
	for _, option := range options {
		option(r)
	}

	for _, l := range listeners {
		listenerRoutes := routes.RoutesForListener(l.ID)
		if len(listenerRoutes) == 0 {
			r.logger.Debug("Skipping listener without routes", "listener_id", l.ID)
			continue
		}

		srv, err := lhttpserver.NewHTTPServer(l, listenerRoutes, r.logger.WithGroup("httpserver"))
		if err != nil {
			return nil, fmt.Errorf("listener %s: %w", l.ID, err)
		}
		r.logger.Debug("Configured listener",
			"listener_id", l.ID,
			"address", l.Address,
			"route_count", len(listenerRoutes))
		r.servers = append(r.servers, srv)
	}
	return r, nil
}

// Servers returns the configured servers.
func (r *Runner) Servers() []*lhttpserver.HTTPServer {
	return r.servers
}

// Runnables returns the servers as supervisor runnables.
func (r *Runner) Runnables() []supervisor.Runnable {
	out := make([]supervisor.Runnable, 0, len(r.servers))
	for _, s := range r.servers {
		out = append(out, s)
	}
	return out
}
