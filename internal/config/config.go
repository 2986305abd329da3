// Package config holds the domain model of an mcpregistry configuration file: listeners,
// named collaborators and the list of MCP server entries.
package config

import (
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/capabilities"
)

const (
	VersionLatest  = "v1"
	VersionUnknown = "unknown"
)

// Defaults applied when a server entry leaves a key out.
const (
	DefaultListenerID       = "default"
	DefaultHTTPPath         = "/mcp"
	DefaultStdioName        = "mcp:server"
	DefaultStdioDescription = "Run the MCP server."
	DefaultSessionTTL       = 3600
)

// Config is the root of a configuration file.
type Config struct {
	Version       string         `toml:"version"`
	Logging       Logging        `toml:"logging"`
	Listeners     []Listener     `toml:"listeners"`
	Collaborators []Collaborator `toml:"collaborators"`
	Servers       []Server       `toml:"servers"`
}

// Listener is an HTTP socket that server routes can be mounted on.
type Listener struct {
	ID      string        `toml:"id"`
	Address string        `toml:"address"`
	HTTP    *HTTPTimeouts `toml:"http"`
}

// HTTPTimeouts tunes the underlying http.Server. Zero values keep the server defaults.
type HTTPTimeouts struct {
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	IdleTimeout  Duration `toml:"idle_timeout"`
	DrainTimeout Duration `toml:"drain_timeout"`
}

// Server is one named MCP server entry.
type Server struct {
	Key     string `toml:"key"`
	Enabled *bool  `toml:"enabled"`

	Name        string `toml:"name"`
	Version     string `toml:"version"`
	Description string `toml:"description"`
	WebsiteURL  string `toml:"website_url"`
	Icons       []Icon `toml:"icons"`

	Logger          string              `toml:"logger"`
	ProtocolVersion string              `toml:"protocol_version"`
	PaginationLimit *int                `toml:"pagination_limit"`
	Instructions    string              `toml:"instructions"`
	Capabilities    *capabilities.Flags `toml:"capabilities"`
	Discovery       *Discovery          `toml:"discovery"`
	Session         *Session            `toml:"session"`

	RequestHandlers      []string `toml:"request_handlers"`
	NotificationHandlers []string `toml:"notification_handlers"`

	Tools             []Tool             `toml:"tools"`
	Resources         []Resource         `toml:"resources"`
	ResourceTemplates []ResourceTemplate `toml:"resource_templates"`
	Prompts           []Prompt           `toml:"prompts"`
	Loaders           []string           `toml:"loaders"`

	HTTP  *HTTP  `toml:"http"`
	Stdio *Stdio `toml:"stdio"`
}

// IsEnabled reports whether the entry takes part in registration. Only an explicit
// enabled = false turns an entry off.
func (s *Server) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Discovery configures the manifest scan for auto-registered components.
type Discovery struct {
	BasePath    string   `toml:"base_path"`
	ScanDirs    []string `toml:"scan_dirs"`
	ExcludeDirs []string `toml:"exclude_dirs"`
	Cache       string   `toml:"cache"`
	Watch       bool     `toml:"watch"`
}

// Session names the session store and ID factory collaborators.
type Session struct {
	Store   string `toml:"store"`
	Factory string `toml:"factory"`
	TTL     *int   `toml:"ttl"`
}

// IsEmpty reports whether nothing was configured.
func (s *Session) IsEmpty() bool {
	return s == nil || (s.Store == "" && s.Factory == "" && s.TTL == nil)
}

// HTTP activates the streamable HTTP surface for an entry.
type HTTP struct {
	Path    string      `toml:"path"`
	Server  string      `toml:"server"`
	Options HTTPOptions `toml:"options"`
}

// ListenerID returns the listener the route is mounted on.
func (h *HTTP) ListenerID() string {
	if h.Server == "" {
		return DefaultListenerID
	}
	return h.Server
}

// RoutePath returns the configured path or the default.
func (h *HTTP) RoutePath() string {
	if h.Path == "" {
		return DefaultHTTPPath
	}
	return h.Path
}

// HTTPOptions are per-route options.
type HTTPOptions struct {
	// CORS overrides individual keys of the default CORS header set.
	CORS map[string]string `toml:"cors"`
	// Headers are set on every response of the route.
	Headers   map[string]string `toml:"headers"`
	AccessLog bool              `toml:"access_log"`
}

// Stdio activates the stdio command for an entry.
type Stdio struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// CommandName returns the configured command name or the default.
func (s *Stdio) CommandName() string {
	if s.Name == "" {
		return DefaultStdioName
	}
	return s.Name
}

// CommandDescription returns the configured description or the default.
func (s *Stdio) CommandDescription() string {
	if s.Description == "" {
		return DefaultStdioDescription
	}
	return s.Description
}
