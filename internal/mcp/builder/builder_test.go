package builder

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlanticdynamic/mcpregistry/internal/config"
	"github.com/atlanticdynamic/mcpregistry/internal/lookup"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/capabilities"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/engine"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/events"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/session"
)

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestBuildDefaults(t *testing.T) {
	t.Parallel()

	srv, err := Build(t.Context(), &config.Server{Key: "plain"}, nil)
	require.NoError(t, err)

	info := srv.Info()
	assert.Equal(t, "plain", info.Key)
	assert.Equal(t, DefaultName, info.Name)
	assert.Equal(t, DefaultVersion, info.Version)
	assert.Equal(t, DefaultDescription, info.Description)
	assert.Empty(t, srv.ProtocolVersion())
	assert.Equal(t, session.DefaultTTL, srv.SessionTTL())
}

func TestBuildIdentity(t *testing.T) {
	t.Parallel()

	cfg := &config.Server{
		Key:         "k",
		Name:        "Named",
		Version:     "3.1.4",
		Description: "Does things.",
		WebsiteURL:  "https://example.com",
		Icons:       []config.Icon{{Src: "https://example.com/i.png"}},
	}
	srv, err := Build(t.Context(), cfg, lookup.Empty{})
	require.NoError(t, err)

	impl := srv.Implementation()
	assert.Equal(t, "Named", impl.Name)
	assert.Equal(t, "3.1.4", impl.Version)
	assert.Equal(t, "https://example.com", impl.WebsiteURL)
	require.Len(t, impl.Icons, 1)
	assert.Equal(t, "https://example.com/i.png", impl.Icons[0].Source)
	assert.Equal(t, "Does things.", srv.Info().Description)
}

func TestBuildLoggerResolution(t *testing.T) {
	t.Parallel()

	t.Run("configured name", func(t *testing.T) {
		t.Parallel()
		var custom, fallback bytes.Buffer
		c := lookup.NewContainer()
		c.MustRegister("custom", bufferLogger(&custom))
		c.MustRegister(lookup.DefaultLogger, bufferLogger(&fallback))

		_, err := Build(t.Context(), &config.Server{Key: "a", Logger: "custom"}, c)
		require.NoError(t, err)
		assert.Contains(t, custom.String(), "Server built")
		assert.Empty(t, fallback.String())
	})

	t.Run("falls back to the default logger", func(t *testing.T) {
		t.Parallel()
		var fallback bytes.Buffer
		c := lookup.NewContainer()
		c.MustRegister(lookup.DefaultLogger, slog.NewTextHandler(&fallback, &slog.HandlerOptions{Level: slog.LevelDebug}))

		_, err := Build(t.Context(), &config.Server{Key: "a", Logger: "missing"}, c)
		require.NoError(t, err)
		assert.Contains(t, fallback.String(), "Server built")
	})

	t.Run("no logger at all", func(t *testing.T) {
		t.Parallel()
		var diag bytes.Buffer
		_, err := Build(t.Context(), &config.Server{Key: "a"}, lookup.NewContainer(),
			WithLogHandler(slog.NewTextHandler(&diag, &slog.HandlerOptions{Level: slog.LevelDebug})))
		require.NoError(t, err)
		assert.Contains(t, diag.String(), "No logger resolved")
	})
}

func TestBuildEventDispatcher(t *testing.T) {
	t.Parallel()

	recorder := &events.Recorder{}
	c := lookup.NewContainer()
	c.MustRegister(lookup.DefaultEventDispatcher, recorder)

	_, err := Build(t.Context(), &config.Server{Key: "evented"}, c)
	require.NoError(t, err)
	require.Equal(t, []string{events.ServerBuilt}, recorder.Names())
	assert.Equal(t, "evented", recorder.Events()[0].Server)
}

func TestBuildSession(t *testing.T) {
	t.Parallel()

	t.Run("resolved store", func(t *testing.T) {
		t.Parallel()
		store := session.NewMemoryStore()
		c := lookup.NewContainer()
		c.MustRegister("sessions", store)
		c.MustRegister("ids", session.FactoryFunc(func() string { return "id-1" }))

		srv, err := Build(t.Context(), &config.Server{
			Key:     "s",
			Session: &config.Session{Store: "sessions", Factory: "ids", TTL: intPtr(60)},
		}, c)
		require.NoError(t, err)
		assert.Same(t, store, srv.SessionStore())
		assert.Equal(t, time.Minute, srv.SessionTTL())
		assert.Equal(t, "id-1", srv.NewSessionID())
	})

	t.Run("unresolved store keeps the default", func(t *testing.T) {
		t.Parallel()
		srv, err := Build(t.Context(), &config.Server{
			Key:     "s",
			Session: &config.Session{Store: "missing", TTL: intPtr(60)},
		}, lookup.NewContainer())
		require.NoError(t, err)
		assert.IsType(t, &session.MemoryStore{}, srv.SessionStore())
		assert.Equal(t, session.DefaultTTL, srv.SessionTTL())
	})
}

func TestBuildPropagatesFinalizeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     *config.Server
		wantErr error
	}{
		{
			name:    "protocol version",
			cfg:     &config.Server{Key: "a", ProtocolVersion: "not-a-version"},
			wantErr: engine.ErrUnsupportedProtocolVersion,
		},
		{
			name:    "tool schema",
			cfg:     &config.Server{Key: "a", Tools: []config.Tool{{Name: "t", Handler: "h"}}},
			wantErr: engine.ErrInvalidRegistration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Build(t.Context(), tt.cfg, nil)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBuildSkipsUnresolvedReferences(t *testing.T) {
	t.Parallel()

	cfg := &config.Server{
		Key:                  "a",
		RequestHandlers:      []string{"missing"},
		NotificationHandlers: []string{"missing"},
		Loaders:              []string{"missing"},
		Discovery:            &config.Discovery{Cache: "missing", BasePath: t.TempDir()},
	}
	_, err := Build(t.Context(), cfg, lookup.NewContainer())
	require.NoError(t, err)
}

func TestBuildServesDeclaredComponents(t *testing.T) {
	t.Parallel()

	c := lookup.NewContainer()
	c.MustRegister("echo", mcp.ToolHandler(func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(req.Params.Arguments)}}}, nil
	}))

	cfg := &config.Server{
		Key:             "full",
		Name:            "Full",
		ProtocolVersion: "2025-06-18",
		PaginationLimit: intPtr(1),
		Instructions:    "read the docs",
		Capabilities:    &capabilities.Flags{Tools: boolPtr(true), Completions: boolPtr(false)},
		Discovery:       &config.Discovery{BasePath: t.TempDir()},
		Tools: []config.Tool{
			{Handler: "echo", Name: "echo", InputSchema: map[string]any{"type": "object"}},
			{Handler: "echo", Name: "echo2", InputSchema: map[string]any{"type": "object"}},
		},
	}
	srv, err := Build(t.Context(), cfg, c)
	require.NoError(t, err)

	ctx := t.Context()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := srv.MCP().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })
	cs, err := mcp.NewClient(&mcp.Implementation{Name: "c", Version: "1"}, nil).Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })

	init := cs.InitializeResult()
	assert.Equal(t, "2025-06-18", init.ProtocolVersion)
	assert.Equal(t, "read the docs", init.Instructions)
	require.NotNil(t, init.Capabilities.Tools)
	assert.Nil(t, init.Capabilities.Completions)

	page, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, page.Tools, 1)
	assert.NotEmpty(t, page.NextCursor)

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: "echo", Arguments: map[string]any{"a": 1}})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	assert.JSONEq(t, `{"a":1}`, res.Content[0].(*mcp.TextContent).Text)
}
