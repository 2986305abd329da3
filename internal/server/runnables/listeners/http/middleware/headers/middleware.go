// Package headers sets fixed response headers on every request of a route.
//
// Example configuration:
//
//	[servers.http.options.headers]
//	"X-Content-Type-Options" = "nosniff"
//	"X-Frame-Options" = "DENY"
package headers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/robbyt/go-supervisor/runnables/httpserver"
	supervisorHeaders "github.com/robbyt/go-supervisor/runnables/httpserver/middleware/headers"
)

var ErrInvalidHeader = errors.New("invalid header")

// HeadersMiddleware wraps go-supervisor's header operations.
type HeadersMiddleware struct {
	headers    http.Header
	middleware httpserver.HandlerFunc
}

// NewHeadersMiddleware validates the header names and builds the middleware.
func NewHeadersMiddleware(set map[string]string) (*HeadersMiddleware, error) {
	h := make(http.Header, len(set))
	for name, value := range set {
		if name == "" || strings.ContainsAny(name, " \t\r\n:") {
			return nil, fmt.Errorf("%w: name %q", ErrInvalidHeader, name)
		}
		if strings.ContainsAny(value, "\r\n") {
			return nil, fmt.Errorf("%w: value of %q contains a line break", ErrInvalidHeader, name)
		}
		h.Set(name, value)
	}

	return &HeadersMiddleware{
		headers:    h,
		middleware: supervisorHeaders.NewWithOperations(supervisorHeaders.WithSet(h)),
	}, nil
}

// Middleware returns the go-supervisor handler.
func (hm *HeadersMiddleware) Middleware() httpserver.HandlerFunc {
	return hm.middleware
}
