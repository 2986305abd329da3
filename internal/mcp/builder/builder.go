// Package builder turns one server entry into a fully wired engine.Server.
package builder

import (
	"context"
	"log/slog"

	"github.com/atlanticdynamic/mcpregistry/internal/config"
	"github.com/atlanticdynamic/mcpregistry/internal/lookup"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/binder"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/capabilities"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/discovery"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/engine"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/events"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/session"
)

// Identity defaults for entries that leave them out.
const (
	DefaultName        = "MCP Server"
	DefaultVersion     = "1.0.0"
	DefaultDescription = "A MCP server."
)

type options struct {
	logger *slog.Logger
}

// Option configures Build.
type Option func(*options)

// WithLogHandler sets the handler for the builder's own diagnostics. It is not the logger
// given to the server; that one is resolved from the lookup.
func WithLogHandler(handler slog.Handler) Option {
	return func(o *options) {
		if handler != nil {
			o.logger = slog.New(handler).WithGroup("builder")
		}
	}
}

// Build wires cfg into a new engine.Builder and finalizes it. Optional collaborators that do
// not resolve are skipped. Errors from the engine's finalize step are returned unchanged.
func Build(ctx context.Context, cfg *config.Server, lk lookup.Lookup, opts ...Option) (*engine.Server, error) {
	o := &options{logger: slog.Default().WithGroup("builder")}
	for _, opt := range opts {
		opt(o)
	}
	if lk == nil {
		lk = lookup.Empty{}
	}
	logger := o.logger.With("server", cfg.Key)

	b := engine.NewBuilder()
	b.SetServerInfo(identity(cfg))
	b.SetContainer(lk)

	if l, ok := resolveLogger(lk, cfg.Logger); ok {
		b.SetLogger(l)
	} else {
		logger.Debug("No logger resolved, using the process default", "logger", cfg.Logger)
	}

	if d, ok := lookup.Resolve[events.Dispatcher](lk, lookup.DefaultEventDispatcher); ok {
		b.SetEventDispatcher(d)
	}

	if cfg.ProtocolVersion != "" {
		b.SetProtocolVersion(cfg.ProtocolVersion)
	}
	if cfg.PaginationLimit != nil {
		b.SetPaginationLimit(*cfg.PaginationLimit)
	}
	if cfg.Instructions != "" {
		b.SetInstructions(cfg.Instructions)
	}
	if cfg.Capabilities != nil {
		b.SetCapabilities(capabilities.Compose(*cfg.Capabilities))
	}

	discovery.Configure(cfg.Discovery, lk, b)
	session.Configure(cfg.Session, lk, b)

	binder.BindHandlers(cfg, lk, b)
	binder.BindRegistrations(cfg, b)
	binder.BindLoaders(cfg, lk, b)

	return b.Build(ctx)
}

func identity(cfg *config.Server) engine.ServerInfo {
	info := engine.ServerInfo{
		Key:         cfg.Key,
		Name:        cfg.Name,
		Version:     cfg.Version,
		Description: cfg.Description,
		WebsiteURL:  cfg.WebsiteURL,
		Icons:       cfg.Icons,
	}
	if info.Name == "" {
		info.Name = DefaultName
	}
	if info.Version == "" {
		info.Version = DefaultVersion
	}
	if info.Description == "" {
		info.Description = DefaultDescription
	}
	return info
}

// resolveLogger tries the entry's own logger name, then the process-wide default name.
// Both *slog.Logger and slog.Handler collaborators are accepted.
func resolveLogger(lk lookup.Lookup, name string) (*slog.Logger, bool) {
	for _, n := range []string{name, lookup.DefaultLogger} {
		if l, ok := lookup.Resolve[*slog.Logger](lk, n); ok {
			return l, true
		}
		if h, ok := lookup.Resolve[slog.Handler](lk, n); ok {
			return slog.New(h), true
		}
	}
	return nil, false
}
