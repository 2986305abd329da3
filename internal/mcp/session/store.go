// Package session persists MCP session state between HTTP requests and binds the configured
// store to a server being built.
package session

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefaultTTL is how long a session lives without activity when nothing else is configured.
const DefaultTTL = 3600 * time.Second

// Store keeps the negotiated state of a session so that any request carrying its ID can
// resume it.
type Store interface {
	// Load returns ErrSessionNotFound for unknown or expired IDs.
	Load(ctx context.Context, id string) (*mcp.ServerSessionState, error)
	Save(ctx context.Context, id string, state *mcp.ServerSessionState, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// Factory mints new session IDs.
type Factory interface {
	NewID() string
}

// FactoryFunc adapts a plain function to Factory.
type FactoryFunc func() string

// NewID implements Factory.
func (f FactoryFunc) NewID() string { return f() }
