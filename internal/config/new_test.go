package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullConfig = `
version = "v1"

[logging]
level = "debug"
format = "json"

[[listeners]]
id = "default"
address = ":8080"
[listeners.http]
read_timeout = "5s"
drain_timeout = "1m"

[[collaborators]]
id = "sessions"
type = "redis_session_store"
address = "localhost:6379"
db = 2

[[collaborators]]
id = "greet"
type = "starlark_tool"
code = "_ = 1"
timeout = "2s"

[[servers]]
key = "primary"
name = "Primary"
version = "2.1.0"
website_url = "https://example.com"
protocol_version = "2025-06-18"
pagination_limit = 25
instructions = "Use the tools."
request_handlers = ["audit"]
loaders = ["static"]

[[servers.icons]]
src = "https://example.com/icon.png"
mime_type = "image/png"
sizes = ["48x48"]

[servers.capabilities]
tools = true
tools_list_changed = true
completions = false

[servers.discovery]
base_path = "/srv/app"
scan_dirs = ["lib"]
cache = "discovery-cache"

[servers.session]
store = "sessions"
ttl = 600

[[servers.tools]]
handler = "greet"
name = "greet"
description = "Greets someone"
[servers.tools.input_schema]
type = "object"
[servers.tools.input_schema.properties.name]
type = "string"
[servers.tools.annotations]
read_only_hint = true
destructive_hint = false

[[servers.resources]]
handler = "readme"
uri = "file:///README.md"
name = "readme"
mime_type = "text/markdown"
size = 1024

[[servers.resource_templates]]
handler = "files"
uri_template = "file:///{path}"
name = "files"

[[servers.prompts]]
handler = "summarize"
name = "summarize"
[[servers.prompts.arguments]]
name = "text"
required = true

[servers.http]
path = "/primary"
[servers.http.options]
access_log = true
[servers.http.options.cors]
"Access-Control-Allow-Origin" = "https://example.com"

[[servers]]
key = "local"
enabled = false
[servers.stdio]
`

func TestNewConfigFromBytes(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfigFromBytes([]byte(fullConfig))
	require.NoError(t, err)

	assert.Equal(t, VersionLatest, cfg.Version)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)

	require.Len(t, cfg.Listeners, 1)
	require.NotNil(t, cfg.Listeners[0].HTTP)
	assert.Equal(t, 5*time.Second, cfg.Listeners[0].HTTP.ReadTimeout.AsDuration())
	assert.Equal(t, time.Minute, cfg.Listeners[0].HTTP.DrainTimeout.AsDuration())

	require.Len(t, cfg.Collaborators, 2)
	assert.Equal(t, CollaboratorRedisSessionStore, cfg.Collaborators[0].Type)
	assert.Equal(t, 2, cfg.Collaborators[0].DB)
	assert.Equal(t, 2*time.Second, cfg.Collaborators[1].Timeout.AsDuration())

	require.Len(t, cfg.Servers, 2)
	primary := cfg.Servers[0]
	assert.True(t, primary.IsEnabled())
	assert.Nil(t, primary.Enabled)
	assert.Equal(t, "Primary", primary.Name)
	assert.Equal(t, "2025-06-18", primary.ProtocolVersion)
	require.NotNil(t, primary.PaginationLimit)
	assert.Equal(t, 25, *primary.PaginationLimit)
	require.Len(t, primary.Icons, 1)
	assert.Equal(t, []string{"48x48"}, primary.Icons[0].Sizes)

	require.NotNil(t, primary.Capabilities)
	require.NotNil(t, primary.Capabilities.Tools)
	assert.True(t, *primary.Capabilities.Tools)
	require.NotNil(t, primary.Capabilities.Completions)
	assert.False(t, *primary.Capabilities.Completions)
	assert.Nil(t, primary.Capabilities.Resources)

	require.NotNil(t, primary.Discovery)
	assert.Equal(t, []string{"lib"}, primary.Discovery.ScanDirs)
	assert.Nil(t, primary.Discovery.ExcludeDirs)

	require.NotNil(t, primary.Session)
	assert.Equal(t, 600, *primary.Session.TTL)

	require.Len(t, primary.Tools, 1)
	assert.Equal(t, "object", primary.Tools[0].InputSchema["type"])
	require.NotNil(t, primary.Tools[0].Annotations)
	require.NotNil(t, primary.Tools[0].Annotations.DestructiveHint)
	assert.False(t, *primary.Tools[0].Annotations.DestructiveHint)
	assert.Nil(t, primary.Tools[0].Annotations.OpenWorldHint)

	require.Len(t, primary.Resources, 1)
	assert.Equal(t, int64(1024), primary.Resources[0].Size)
	require.Len(t, primary.Prompts, 1)
	assert.True(t, primary.Prompts[0].Arguments[0].Required)

	require.NotNil(t, primary.HTTP)
	assert.Equal(t, "/primary", primary.HTTP.RoutePath())
	assert.Equal(t, DefaultListenerID, primary.HTTP.ListenerID())
	assert.True(t, primary.HTTP.Options.AccessLog)
	assert.Equal(t, "https://example.com", primary.HTTP.Options.CORS["Access-Control-Allow-Origin"])
	assert.Nil(t, primary.Stdio)

	local := cfg.Servers[1]
	assert.False(t, local.IsEnabled())
	require.NotNil(t, local.Stdio)
	assert.Equal(t, DefaultStdioName, local.Stdio.CommandName())
	assert.Equal(t, DefaultStdioDescription, local.Stdio.CommandDescription())
}

func TestNewConfigFromBytesErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "empty input", input: "", wantErr: ErrFailedToLoadConfig},
		{name: "invalid toml", input: "servers = [", wantErr: ErrFailedToLoadConfig},
		{name: "unsupported version", input: `version = "v9"`, wantErr: ErrFailedToLoadConfig},
		{
			name:    "unknown key",
			input:   "[[servers]]\nkey = \"a\"\nunknown_key = true\n",
			wantErr: ErrDecodeConfig,
		},
		{
			name:    "invalid duration",
			input:   "[[listeners]]\nid = \"a\"\naddress = \":1\"\n[listeners.http]\nread_timeout = \"soon\"\n",
			wantErr: ErrDecodeConfig,
		},
		{
			name:    "validation failure",
			input:   "[[servers]]\nkey = \"a\"\n[servers.http]\n",
			wantErr: ErrFailedToValidateConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewConfigFromBytes([]byte(tt.input))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewConfigInterpolatesEnvironment(t *testing.T) {
	t.Setenv("MCPREGISTRY_TEST_ADDR", ":9191")

	cfg, err := NewConfigFromBytes([]byte(`
[[listeners]]
id = "default"
address = "${MCPREGISTRY_TEST_ADDR}"

[[servers]]
key = "s"
name = "${MCPREGISTRY_TEST_NAME:Fallback}"
[servers.http]
`))
	require.NoError(t, err)
	assert.Equal(t, ":9191", cfg.Listeners[0].Address)
	assert.Equal(t, "Fallback", cfg.Servers[0].Name)
}

func TestNewConfigFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "registry.toml")
	require.NoError(t, os.WriteFile(path, []byte(fullConfig), 0o600))

	cfg, err := NewConfig(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Servers, 2)

	_, err = NewConfig(filepath.Join(dir, "missing.toml"))
	require.ErrorIs(t, err, ErrFailedToLoadConfig)

	yamlPath := filepath.Join(dir, "registry.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("a: b"), 0o600))
	_, err = NewConfig(yamlPath)
	require.ErrorIs(t, err, ErrFailedToLoadConfig)
}

func TestConfigString(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfigFromBytes([]byte(fullConfig))
	require.NoError(t, err)

	out := cfg.String()
	assert.Contains(t, out, "primary")
	assert.Contains(t, out, "/primary")
	assert.Contains(t, out, "mcp:server")
	assert.Contains(t, out, "disabled")
	assert.Contains(t, out, "tools")
}
