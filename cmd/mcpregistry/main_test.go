package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/atlanticdynamic/mcpregistry/internal/config"
)

const testConfig = `
[[listeners]]
id = "default"
address = "127.0.0.1:0"

[[collaborators]]
id = "echo"
type = "echo_tool"
key_prefix = "echo: "

[[servers]]
key = "demo"
name = "Demo"
[[servers.tools]]
handler = "echo"
name = "echo"
[servers.tools.input_schema]
type = "object"
[servers.http]
path = "/demo"
[servers.stdio]
name = "demo:serve"

[[servers]]
key = "off"
enabled = false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	require.NoError(t, app.Run(t.Context(), []string{"mcpregistry", "version"}))
	assert.Equal(t, "mcpregistry version dev\n", out.String())
}

func TestDryRun(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfigPath(writeConfig(t, testConfig))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, dryRun(t.Context(), cfg, &out))
	assert.Contains(t, out.String(), "Registered HTTP route")
	assert.Contains(t, out.String(), "Registered stdio command")
	assert.Contains(t, out.String(), "Configuration is valid")
}

func TestDryRunReportsRegistrationErrors(t *testing.T) {
	t.Parallel()

	cfg, err := config.NewConfigFromBytes([]byte(`
[[listeners]]
id = "default"
address = "127.0.0.1:0"

[[servers]]
key = "demo"
protocol_version = "1999-01-01"
[servers.http]
`))
	require.NoError(t, err)

	var out bytes.Buffer
	err = dryRun(t.Context(), cfg, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server demo")
	assert.NotContains(t, out.String(), "Configuration is valid")
}

func TestLoadConfigPath(t *testing.T) {
	t.Parallel()

	_, err := loadConfigPath(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorIs(t, err, config.ErrFailedToLoadConfig)
}

func TestRenderConfigSummary(t *testing.T) {
	t.Parallel()

	cfg, err := config.NewConfigFromBytes([]byte(testConfig))
	require.NoError(t, err)

	summary := renderConfigSummary(cfg)
	assert.Contains(t, summary, "- Listeners: 1")
	assert.Contains(t, summary, "- Collaborators: 1")
	assert.Contains(t, summary, "- Servers: 2 (1 enabled)")
}

func TestFindCommand(t *testing.T) {
	t.Parallel()

	commands := []*cli.Command{{Name: "a:serve", Usage: "first"}, {Name: "b:serve", Usage: "second"}}
	require.NotNil(t, findCommand(commands, "b:serve"))
	assert.Equal(t, "second", findCommand(commands, "b:serve").Usage)
	assert.Nil(t, findCommand(commands, "c:serve"))

	var out bytes.Buffer
	require.NoError(t, listCommands(&out, commands))
	assert.Equal(t, "a:serve\tfirst\nb:serve\tsecond\n", out.String())
}
