package streamable

import (
	"maps"
	"net/http"
	"slices"
)

// CorsHeaders maps CORS response header names to values.
type CorsHeaders map[string]string

// DefaultCorsHeaders returns a fresh copy of the default CORS policy.
func DefaultCorsHeaders() CorsHeaders {
	return CorsHeaders{
		"Access-Control-Allow-Origin":   "*",
		"Access-Control-Allow-Methods":  "GET, POST, DELETE, OPTIONS",
		"Access-Control-Allow-Headers":  "Content-Type, Mcp-Session-Id, Mcp-Protocol-Version, Last-Event-ID, Authorization, Accept",
		"Access-Control-Expose-Headers": "Mcp-Session-Id",
	}
}

// Merge returns a copy of c with each override replacing a single key.
func (c CorsHeaders) Merge(overrides map[string]string) CorsHeaders {
	out := maps.Clone(c)
	if out == nil {
		out = CorsHeaders{}
	}
	for k, v := range overrides {
		out[http.CanonicalHeaderKey(k)] = v
	}
	return out
}

// Apply sets every header on h, in sorted order.
func (c CorsHeaders) Apply(h http.Header) {
	for _, k := range slices.Sorted(maps.Keys(c)) {
		h.Set(k, c[k])
	}
}
