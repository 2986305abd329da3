// Package middleware assembles the go-supervisor middleware chain of an MCP route.
package middleware

import (
	"github.com/robbyt/go-supervisor/runnables/httpserver"
)

// Middleware is one link of a route's chain.
type Middleware = httpserver.HandlerFunc
