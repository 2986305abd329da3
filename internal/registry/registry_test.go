package registry

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlanticdynamic/mcpregistry/internal/config"
	"github.com/atlanticdynamic/mcpregistry/internal/lookup"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/scripts"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/transport/streamable"
)

const initializeBody = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"test-client","version":"1.0.0"}}}`

func boolPtr(b bool) *bool { return &b }

func echoServer(key string) config.Server {
	return config.Server{
		Key:  key,
		Name: "Demo",
		Tools: []config.Tool{{
			Handler:     "echo",
			Name:        "echo",
			Description: "Echoes its arguments",
			InputSchema: map[string]any{"type": "object"},
		}},
	}
}

func testContainer() *lookup.Container {
	c := lookup.NewContainer()
	c.MustRegister("echo", scripts.EchoTool{Prefix: "echo: "})
	return c
}

func registered(t *testing.T, cfg *config.Config) *Registry {
	t.Helper()
	reg := New(cfg, testContainer())
	require.NoError(t, reg.Register(t.Context()))
	return reg
}

type client struct {
	t     *testing.T
	route Route
}

func (c *client) do(method, body, sessionID, contentType string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, c.route.Path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if sessionID != "" {
		req.Header.Set(streamable.SessionIDHeader, sessionID)
	}
	rec := httptest.NewRecorder()
	route := c.route.Route
	route.ServeHTTP(rec, req)
	return rec
}

func (c *client) post(body, sessionID string) *httptest.ResponseRecorder {
	c.t.Helper()
	return c.do(http.MethodPost, body, sessionID, "application/json")
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRegisterSurfaces(t *testing.T) {
	t.Parallel()

	httpOnly := echoServer("http-only")
	httpOnly.HTTP = &config.HTTP{Path: "/a"}

	both := echoServer("both")
	both.HTTP = &config.HTTP{Path: "/b", Server: "admin"}
	both.Stdio = &config.Stdio{Name: "both:serve"}

	stdioOnly := echoServer("stdio-only")
	stdioOnly.Stdio = &config.Stdio{}

	disabled := echoServer("disabled")
	disabled.Enabled = boolPtr(false)
	disabled.HTTP = &config.HTTP{Path: "/disabled"}

	neither := echoServer("neither")

	reg := registered(t, &config.Config{Servers: []config.Server{httpOnly, both, stdioOnly, disabled, neither}})

	routes := reg.Routes()
	require.Len(t, routes, 2)
	assert.Equal(t, "http-only", routes[0].ServerKey)
	assert.Equal(t, config.DefaultListenerID, routes[0].ListenerID)
	assert.Equal(t, "/a", routes[0].Path)
	assert.Equal(t, "admin", routes[1].ListenerID)

	assert.Equal(t, []string{"admin", "default"}, reg.ListenerIDs())
	assert.Len(t, reg.RoutesForListener("default"), 1)
	assert.Len(t, reg.RoutesForListener("admin"), 1)
	assert.Empty(t, reg.RoutesForListener("missing"))

	commands := reg.Commands()
	require.Len(t, commands, 2)
	assert.Equal(t, "both:serve", commands[0].Name)
	assert.Equal(t, config.DefaultStdioName, commands[1].Name)
	assert.Equal(t, config.DefaultStdioDescription, commands[1].Usage)

	// http and stdio each get their own instance
	assert.Len(t, reg.Servers(), 4)
	assert.Empty(t, reg.Runnables())

	assert.Contains(t, reg.Logs(), "Registered HTTP route")
	assert.Contains(t, reg.Logs(), "Registered stdio command")
}

func TestRegisterWithoutServers(t *testing.T) {
	t.Parallel()

	reg := New(nil, nil)
	require.NoError(t, reg.Register(t.Context()))
	assert.Empty(t, reg.Routes())

	reg = New(&config.Config{}, nil)
	require.NoError(t, reg.Register(t.Context()))
	assert.Empty(t, reg.Commands())
}

func TestRegisterTwiceDuplicates(t *testing.T) {
	t.Parallel()

	entry := echoServer("demo")
	entry.HTTP = &config.HTTP{}
	entry.Stdio = &config.Stdio{}
	reg := registered(t, &config.Config{Servers: []config.Server{entry}})
	require.NoError(t, reg.Register(t.Context()))

	assert.Len(t, reg.Routes(), 2)
	assert.Len(t, reg.Commands(), 2)
}

func TestRegisterAggregatesFailures(t *testing.T) {
	t.Parallel()

	broken := echoServer("broken")
	broken.ProtocolVersion = "1999-01-01"
	broken.HTTP = &config.HTTP{Path: "/broken"}

	good := echoServer("good")
	good.HTTP = &config.HTTP{Path: "/good"}

	reg := New(&config.Config{Servers: []config.Server{broken, good}}, testContainer())
	err := reg.Register(t.Context())
	require.ErrorIs(t, err, ErrBuildServer)
	assert.Contains(t, err.Error(), "broken")

	routes := reg.Routes()
	require.Len(t, routes, 1)
	assert.Equal(t, "good", routes[0].ServerKey)
	assert.Contains(t, reg.Logs(), "Failed to register server")
}

func TestRegisterInvalidRouteHeaders(t *testing.T) {
	t.Parallel()

	entry := echoServer("demo")
	entry.HTTP = &config.HTTP{Options: config.HTTPOptions{Headers: map[string]string{"": "x"}}}

	err := New(&config.Config{Servers: []config.Server{entry}}, testContainer()).Register(t.Context())
	require.ErrorIs(t, err, ErrCreateRoute)
}

func TestHTTPEndToEnd(t *testing.T) {
	t.Parallel()

	entry := echoServer("demo")
	entry.HTTP = &config.HTTP{Options: config.HTTPOptions{
		AccessLog: true,
		CORS:      map[string]string{"Access-Control-Allow-Origin": "https://example.com"},
		Headers:   map[string]string{"X-Frame-Options": "DENY"},
	}}
	reg := registered(t, &config.Config{Servers: []config.Server{entry}})
	c := &client{t: t, route: reg.Routes()[0]}

	rec := c.post(initializeBody, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sessionID := rec.Header().Get(streamable.SessionIDHeader)
	require.NotEmpty(t, sessionID)
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	result, ok := decode(t, rec)["result"].(map[string]any)
	require.True(t, ok)
	serverInfo, ok := result["serverInfo"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Demo", serverInfo["name"])
	assert.Equal(t, "2025-06-18", result["protocolVersion"])

	rec = c.post(`{"jsonrpc":"2.0","method":"notifications/initialized"}`, sessionID)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, sessionID, rec.Header().Get(streamable.SessionIDHeader))

	rec = c.post(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`, sessionID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"name":"echo"`)

	rec = c.post(`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"echo","arguments":{"msg":"hi"}}}`, sessionID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `echo: {\"msg\":\"hi\"}`)

	rec = c.do(http.MethodDelete, "", sessionID, "")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = c.post(`{"jsonrpc":"2.0","id":4,"method":"tools/list"}`, sessionID)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTPBatch(t *testing.T) {
	t.Parallel()

	entry := echoServer("demo")
	entry.HTTP = &config.HTTP{}
	reg := registered(t, &config.Config{Servers: []config.Server{entry}})
	c := &client{t: t, route: reg.Routes()[0]}

	rec := c.post(initializeBody, "")
	require.Equal(t, http.StatusOK, rec.Code)
	sessionID := rec.Header().Get(streamable.SessionIDHeader)

	rec = c.post(`[
		{"jsonrpc":"2.0","id":"a","method":"ping"},
		{"jsonrpc":"2.0","id":"b","method":"tools/list"}
	]`, sessionID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 2)
	ids := []any{out[0]["id"], out[1]["id"]}
	assert.ElementsMatch(t, []any{"a", "b"}, ids)
}

func TestHTTPErrors(t *testing.T) {
	t.Parallel()

	entry := echoServer("demo")
	entry.HTTP = &config.HTTP{}
	reg := registered(t, &config.Config{Servers: []config.Server{entry}})
	c := &client{t: t, route: reg.Routes()[0]}

	t.Run("get is not allowed", func(t *testing.T) {
		t.Parallel()
		rec := c.do(http.MethodGet, "", "", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, allowHeader, rec.Header().Get("Allow"))
		errObj, ok := decode(t, rec)["error"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, ErrMethodNotAllowed.Error(), errObj["message"])
	})

	t.Run("put is not allowed", func(t *testing.T) {
		t.Parallel()
		rec := c.do(http.MethodPut, "{}", "", "application/json")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("non json post", func(t *testing.T) {
		t.Parallel()
		rec := c.do(http.MethodPost, initializeBody, "", "text/plain")
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("missing content type", func(t *testing.T) {
		t.Parallel()
		rec := c.do(http.MethodPost, initializeBody, "", "")
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("json with charset", func(t *testing.T) {
		t.Parallel()
		rec := c.do(http.MethodPost, initializeBody, "", "application/json; charset=utf-8")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown session", func(t *testing.T) {
		t.Parallel()
		rec := c.post(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`, "nope")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()
		rec := c.post(`{"jsonrpc":`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		errObj, ok := decode(t, rec)["error"].(map[string]any)
		require.True(t, ok)
		assert.InDelta(t, -32700, errObj["code"], 0)
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()
		rec := c.post("", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete without session", func(t *testing.T) {
		t.Parallel()
		rec := c.do(http.MethodDelete, "", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("options", func(t *testing.T) {
		t.Parallel()
		rec := c.do(http.MethodOptions, "", "", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestStdioCommand(t *testing.T) {
	t.Parallel()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	entry := echoServer("demo")
	entry.Stdio = &config.Stdio{}
	reg := New(&config.Config{Servers: []config.Server{entry}}, testContainer(),
		WithStdioTransport(func() mcp.Transport { return serverTransport }))
	require.NoError(t, reg.Register(t.Context()))

	commands := reg.Commands()
	require.Len(t, commands, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = commands[0].Run(t.Context(), []string{config.DefaultStdioName})
	}()

	cl := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	cs, err := cl.Connect(t.Context(), clientTransport, nil)
	require.NoError(t, err)

	tools, err := cs.ListTools(t.Context(), nil)
	require.NoError(t, err)
	require.Len(t, tools.Tools, 1)
	assert.Equal(t, "echo", tools.Tools[0].Name)

	require.NoError(t, cs.Close())
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stdio command did not return after the client closed")
	}
}
