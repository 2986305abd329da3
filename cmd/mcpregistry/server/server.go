// Package server wires a loaded configuration into a running process: collaborators, the
// server registry and one HTTP server per listener under go-supervisor.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robbyt/go-supervisor/supervisor"

	"github.com/atlanticdynamic/mcpregistry/internal/collaborators"
	"github.com/atlanticdynamic/mcpregistry/internal/config"
	"github.com/atlanticdynamic/mcpregistry/internal/lookup"
	"github.com/atlanticdynamic/mcpregistry/internal/registry"
	"github.com/atlanticdynamic/mcpregistry/internal/server/runnables/listeners/http"
)

// Runtime is a configuration turned into live objects.
type Runtime struct {
	Config    *config.Config
	Container *lookup.Container
	Registry  *registry.Registry

	collaborators *collaborators.Set
}

// Boot builds the collaborators and registers every server entry. Registration errors are
// returned together with the runtime so callers can still inspect the registration log.
func Boot(ctx context.Context, cfg *config.Config, handler slog.Handler, opts ...registry.Option) (*Runtime, error) {
	container := lookup.NewContainer()
	set, err := collaborators.Bootstrap(cfg.Collaborators, container, handler)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		Config:        cfg,
		Container:     container,
		Registry:      registry.New(cfg, container, opts...),
		collaborators: set,
	}
	return rt, rt.Registry.Register(ctx)
}

// Close releases the collaborators' resources.
func (rt *Runtime) Close() error {
	if rt == nil || rt.collaborators == nil {
		return nil
	}
	return rt.collaborators.Close()
}

// Runnables returns everything the supervisor runs: the listeners followed by the
// discovery watchers.
func (rt *Runtime) Runnables(handler slog.Handler) ([]supervisor.Runnable, error) {
	runner, err := http.NewRunner(rt.Config.Listeners, rt.Registry, http.WithLogHandler(handler))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP listeners: %w", err)
	}
	return append(runner.Runnables(), rt.Registry.Runnables()...), nil
}

// Run serves every HTTP listener of cfg until the process is signaled.
func Run(ctx context.Context, logger *slog.Logger, cfg *config.Config) (err error) {
	logHandler := logger.Handler()

	rt, err := Boot(ctx, cfg, logHandler, registry.WithLogHandler(logHandler))
	defer func() {
		err = errors.Join(err, rt.Close())
	}()
	if err != nil {
		return fmt.Errorf("failed to register servers: %w", err)
	}

	runnables, err := rt.Runnables(logHandler)
	if err != nil {
		return err
	}
	if len(runnables) == 0 {
		return errors.New("no HTTP routes are configured")
	}

	super, err := supervisor.New(
		supervisor.WithContext(ctx),
		supervisor.WithLogHandler(logHandler),
		supervisor.WithRunnables(runnables...),
	)
	if err != nil {
		return fmt.Errorf("failed to create supervisor: %w", err)
	}
	if err := super.Run(); err != nil {
		return fmt.Errorf("failed to run server: %w", err)
	}

	logger.Info("Server shutdown complete")
	return nil
}
