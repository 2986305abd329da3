package config

import (
	"fmt"
	"slices"
)

// CollaboratorType selects what a [[collaborators]] entry builds.
type CollaboratorType string

const (
	CollaboratorMemorySessionStore CollaboratorType = "memory_session_store"
	CollaboratorRedisSessionStore  CollaboratorType = "redis_session_store"
	CollaboratorUUIDSessionFactory CollaboratorType = "uuid_session_factory"
	CollaboratorMemoryCache        CollaboratorType = "memory_cache"
	CollaboratorRedisCache         CollaboratorType = "redis_cache"
	CollaboratorLogger             CollaboratorType = "logger"
	CollaboratorEventLogger        CollaboratorType = "event_logger"
	CollaboratorStarlarkTool       CollaboratorType = "starlark_tool"
	CollaboratorEchoTool           CollaboratorType = "echo_tool"
)

var collaboratorTypes = []CollaboratorType{
	CollaboratorMemorySessionStore,
	CollaboratorRedisSessionStore,
	CollaboratorUUIDSessionFactory,
	CollaboratorMemoryCache,
	CollaboratorRedisCache,
	CollaboratorLogger,
	CollaboratorEventLogger,
	CollaboratorStarlarkTool,
	CollaboratorEchoTool,
}

// IsValid reports whether t is a known collaborator type.
func (t CollaboratorType) IsValid() bool {
	return slices.Contains(collaboratorTypes, t)
}

// IsRedis reports whether the collaborator needs a redis connection.
func (t CollaboratorType) IsRedis() bool {
	return t == CollaboratorRedisSessionStore || t == CollaboratorRedisCache
}

// Collaborator is a named object registered into the lookup container at boot. Only the
// fields relevant to its Type are read.
type Collaborator struct {
	ID   string           `toml:"id"`
	Type CollaboratorType `toml:"type"`

	// redis_session_store, redis_cache; echo_tool reads KeyPrefix as its text prefix
	Address   string `toml:"address"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	KeyPrefix string `toml:"key_prefix"`

	// logger
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`

	// starlark_tool
	Code    string         `toml:"code"`
	URI     string         `toml:"uri"`
	Timeout Duration       `toml:"timeout"`
	Static  map[string]any `toml:"static"`
}

// Validate checks the fields required by the collaborator's type.
func (c *Collaborator) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownCollaboratorType, c.Type)
	}

	switch {
	case c.Type.IsRedis():
		if c.Address == "" {
			return fmt.Errorf("%w: redis address", ErrMissingField)
		}
		if c.DB < 0 {
			return fmt.Errorf("%w: db must not be negative", ErrInvalidValue)
		}
	case c.Type == CollaboratorLogger:
		if !LogLevel(c.Level).IsValid() {
			return fmt.Errorf("%w: log level %q", ErrInvalidValue, c.Level)
		}
		if !LogFormat(c.Format).IsValid() {
			return fmt.Errorf("%w: log format %q", ErrInvalidValue, c.Format)
		}
	case c.Type == CollaboratorStarlarkTool:
		if c.Code == "" && c.URI == "" {
			return fmt.Errorf("%w: code or uri", ErrMissingField)
		}
		if c.Code != "" && c.URI != "" {
			return fmt.Errorf("%w: code and uri are mutually exclusive", ErrInvalidValue)
		}
		if c.Timeout < 0 {
			return fmt.Errorf("%w: timeout must not be negative", ErrInvalidValue)
		}
	}
	return nil
}
