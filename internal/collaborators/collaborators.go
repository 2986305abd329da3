// Package collaborators builds the named objects declared under [[collaborators]] and
// registers them in a lookup container.
package collaborators

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/atlanticdynamic/mcpregistry/internal/config"
	"github.com/atlanticdynamic/mcpregistry/internal/logging"
	"github.com/atlanticdynamic/mcpregistry/internal/lookup"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/discovery"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/events"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/scripts"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/session"
)

var ErrBuildCollaborator = errors.New("failed to build collaborator")

// Set owns the resources opened while building collaborators.
type Set struct {
	closers []func() error
}

// Close releases every opened resource.
func (s *Set) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	s.closers = nil
	return errors.Join(errs...)
}

// Bootstrap builds every collaborator and registers it under its ID. handler is given to
// collaborators that log. On error, resources opened so far are released.
func Bootstrap(cols []config.Collaborator, c *lookup.Container, handler slog.Handler) (*Set, error) {
	if handler == nil {
		handler = slog.Default().Handler()
	}

	set := &Set{}
	for i := range cols {
		col := &cols[i]
		v, err := set.build(col, handler)
		if err == nil {
			err = c.Register(col.ID, v)
		}
		if err != nil {
			return nil, errors.Join(
				fmt.Errorf("%w %s (%s): %w", ErrBuildCollaborator, col.ID, col.Type, err),
				set.Close(),
			)
		}
	}
	return set, nil
}

func (s *Set) build(col *config.Collaborator, handler slog.Handler) (any, error) {
	switch col.Type {
	case config.CollaboratorMemorySessionStore:
		return session.NewMemoryStore(), nil
	case config.CollaboratorRedisSessionStore:
		return session.NewRedisStore(s.redisClient(col), session.WithKeyPrefix(col.KeyPrefix))
	case config.CollaboratorUUIDSessionFactory:
		return session.UUIDFactory{}, nil
	case config.CollaboratorMemoryCache:
		return discovery.NewMemoryCache(), nil
	case config.CollaboratorRedisCache:
		return discovery.NewRedisCache(s.redisClient(col), col.KeyPrefix)
	case config.CollaboratorLogger:
		h, err := logging.NewHandler(logging.Options{Level: col.Level, Format: col.Format, Output: col.Output})
		if err != nil {
			return nil, err
		}
		return slog.New(h), nil
	case config.CollaboratorEventLogger:
		level := slog.LevelInfo
		if col.Level != "" {
			level = logging.ParseLevel(col.Level)
		}
		return events.NewLogger(handler, level), nil
	case config.CollaboratorStarlarkTool:
		return scripts.NewStarlarkTool(col.Code, col.URI,
			scripts.WithTimeout(col.Timeout.AsDuration()),
			scripts.WithStaticData(col.Static),
			scripts.WithLogHandler(handler),
		)
	case config.CollaboratorEchoTool:
		return scripts.EchoTool{Prefix: col.KeyPrefix}, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownCollaboratorType, col.Type)
	}
}

func (s *Set) redisClient(col *config.Collaborator) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     col.Address,
		Password: col.Password,
		DB:       col.DB,
	})
	s.closers = append(s.closers, client.Close)
	return client
}
