// Package registry turns the server entries of a configuration into live delivery
// surfaces: an HTTP route per entry with an http table and a CLI command per entry with a
// stdio table.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/robbyt/go-loglater"
	"github.com/robbyt/go-supervisor/runnables/httpserver"
	"github.com/robbyt/go-supervisor/supervisor"
	"github.com/urfave/cli/v3"

	"github.com/atlanticdynamic/mcpregistry/internal/config"
	"github.com/atlanticdynamic/mcpregistry/internal/lookup"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/builder"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/engine"
)

// Route is one registered HTTP route together with where it is mounted.
type Route struct {
	ServerKey  string
	ListenerID string
	Path       string
	Route      httpserver.Route
}

// Registry builds one engine.Server per enabled entry and exposes it over HTTP and stdio.
type Registry struct {
	cfg        *config.Config
	lk         lookup.Lookup
	collector  *loglater.LogCollector
	logger     *slog.Logger
	logHandler slog.Handler
	stdio      func() mcp.Transport

	mu       sync.Mutex
	routes   []Route
	commands []*cli.Command
	servers  []*engine.Server
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogHandler sets the handler that receives registration logs as they happen. The logs
// are also kept for Logs and PlayLogs.
func WithLogHandler(handler slog.Handler) Option {
	return func(r *Registry) {
		r.logHandler = handler
	}
}

// WithStdioTransport replaces the transport used by stdio commands.
func WithStdioTransport(newTransport func() mcp.Transport) Option {
	return func(r *Registry) {
		if newTransport != nil {
			r.stdio = newTransport
		}
	}
}

// New creates a registry. Nothing is built until Register is called.
func New(cfg *config.Config, lk lookup.Lookup, opts ...Option) *Registry {
	if lk == nil {
		lk = lookup.Empty{}
	}
	r := &Registry{
		cfg:   cfg,
		lk:    lk,
		stdio: func() mcp.Transport { return &mcp.StdioTransport{} },
	}
	for _, opt := range opts {
		opt(r)
	}

	r.collector = loglater.NewLogCollector(r.logHandler)
	r.logger = slog.New(r.collector).WithGroup("registry")
	return r
}

// Register builds every enabled entry. A failing entry is reported and the remaining
// entries are still registered. Calling Register again registers everything again.
func (r *Registry) Register(ctx context.Context) error {
	if r.cfg == nil || len(r.cfg.Servers) == 0 {
		r.logger.Debug("No servers configured")
		return nil
	}

	var errs []error
	for i := range r.cfg.Servers {
		entry := &r.cfg.Servers[i]
		if !entry.IsEnabled() {
			r.logger.Debug("Skipping disabled server", "server", entry.Key)
			continue
		}
		if err := r.registerEntry(ctx, entry); err != nil {
			r.logger.Error("Failed to register server", "server", entry.Key, "error", err)
			errs = append(errs, fmt.Errorf("server %s: %w", entry.Key, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) registerEntry(ctx context.Context, entry *config.Server) error {
	if entry.HTTP == nil && entry.Stdio == nil {
		r.logger.Debug("Server has no delivery surface", "server", entry.Key)
		return nil
	}

	var errs []error
	if entry.HTTP != nil {
		if err := r.registerHTTP(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	if entry.Stdio != nil {
		if err := r.registerStdio(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) build(ctx context.Context, entry *config.Server) (*engine.Server, error) {
	srv, err := builder.Build(ctx, entry, r.lk, builder.WithLogHandler(r.logger.Handler()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildServer, err)
	}
	r.mu.Lock()
	r.servers = append(r.servers, srv)
	r.mu.Unlock()
	return srv, nil
}

func (r *Registry) registerHTTP(ctx context.Context, entry *config.Server) error {
	srv, err := r.build(ctx, entry)
	if err != nil {
		return err
	}

	route, err := newRoute(entry, srv, r.logger)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCreateRoute, err)
	}

	r.mu.Lock()
	r.routes = append(r.routes, Route{
		ServerKey:  entry.Key,
		ListenerID: entry.HTTP.ListenerID(),
		Path:       entry.HTTP.RoutePath(),
		Route:      *route,
	})
	r.mu.Unlock()

	r.logger.Info("Registered HTTP route",
		"server", entry.Key,
		"listener_id", entry.HTTP.ListenerID(),
		"path", entry.HTTP.RoutePath())
	return nil
}

func (r *Registry) registerStdio(ctx context.Context, entry *config.Server) error {
	srv, err := r.build(ctx, entry)
	if err != nil {
		return err
	}

	cmd := newCommand(entry.Stdio, srv, r.stdio)
	r.mu.Lock()
	r.commands = append(r.commands, cmd)
	r.mu.Unlock()

	r.logger.Info("Registered stdio command", "server", entry.Key, "command", cmd.Name)
	return nil
}

// Routes returns every registered route in registration order.
func (r *Registry) Routes() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.routes)
}

// RoutesForListener returns the go-supervisor routes mounted on listener id.
func (r *Registry) RoutesForListener(id string) []httpserver.Route {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []httpserver.Route
	for _, route := range r.routes {
		if route.ListenerID == id {
			out = append(out, route.Route)
		}
	}
	return out
}

// ListenerIDs returns the sorted IDs of every listener that has a route.
func (r *Registry) ListenerIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	for _, route := range r.routes {
		if !slices.Contains(ids, route.ListenerID) {
			ids = append(ids, route.ListenerID)
		}
	}
	slices.Sort(ids)
	return ids
}

// Commands returns the stdio commands in registration order.
func (r *Registry) Commands() []*cli.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.commands)
}

// Servers returns every server instance built so far.
func (r *Registry) Servers() []*engine.Server {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.servers)
}

// Runnables returns the discovery watchers of the built servers, for a supervisor to run.
func (r *Registry) Runnables() []supervisor.Runnable {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []supervisor.Runnable
	for _, srv := range r.servers {
		if w := srv.Watcher(); w != nil {
			out = append(out, w)
		}
	}
	return out
}

// Logs returns the messages logged during registration.
func (r *Registry) Logs() []string {
	records := r.collector.GetLogs()
	out := make([]string, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Message)
	}
	return out
}

// PlayLogs replays the registration log into handler.
func (r *Registry) PlayLogs(handler slog.Handler) error {
	return r.collector.PlayLogs(handler)
}
