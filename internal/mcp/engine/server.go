package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/atlanticdynamic/mcpregistry/internal/config"
	"github.com/atlanticdynamic/mcpregistry/internal/lookup"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/discovery"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/events"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/session"
)

// SessionTransport is a transport that carries a session across independent connections.
// Run restores the session state before connecting and persists it afterwards.
type SessionTransport interface {
	mcp.Transport
	SessionID() string
	SessionState() *mcp.ServerSessionState
}

// Server is a built MCP server plus its session binding. It is safe to run against many
// transports concurrently.
type Server struct {
	info       ServerInfo
	impl       *mcp.Implementation
	mcp        *mcp.Server
	container  lookup.Lookup
	logger     *slog.Logger
	dispatcher events.Dispatcher

	protocolVersion string

	store   session.Store
	factory session.Factory
	ttl     time.Duration

	requestHandlers      []RequestHandler
	notificationHandlers []NotificationHandler

	scanner *discovery.Scanner
	watcher *discovery.Watcher

	mu         sync.Mutex
	manual     nameSet
	discovered nameSet
}

// MCP returns the underlying go-sdk server.
func (s *Server) MCP() *mcp.Server { return s.mcp }

func (s *Server) Info() ServerInfo { return s.info }

func (s *Server) Implementation() *mcp.Implementation { return s.impl }

// ProtocolVersion returns the forced protocol version, or "" when the engine negotiates.
func (s *Server) ProtocolVersion() string { return s.protocolVersion }

func (s *Server) SessionStore() session.Store { return s.store }

func (s *Server) SessionTTL() time.Duration { return s.ttl }

// NewSessionID mints an ID for a new session.
func (s *Server) NewSessionID() string { return s.factory.NewID() }

// Watcher returns the discovery watcher, or nil when watching is off.
func (s *Server) Watcher() *discovery.Watcher { return s.watcher }

// LoadSession returns the stored state for id, or session.ErrSessionNotFound.
func (s *Server) LoadSession(ctx context.Context, id string) (*mcp.ServerSessionState, error) {
	if id == "" {
		return nil, ErrMissingSessionID
	}
	return s.store.Load(ctx, id)
}

// DeleteSession removes the stored state for id.
func (s *Server) DeleteSession(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingSessionID
	}
	return s.store.Delete(ctx, id)
}

// Run serves t until the connection ends. A SessionTransport with a session ID is connected
// with its restored state, and the state is saved once the exchange is complete. Other
// transports, such as stdio, run until the client disconnects or ctx is canceled.
func (s *Server) Run(ctx context.Context, t mcp.Transport) error {
	st, ok := t.(SessionTransport)
	if !ok {
		return s.mcp.Run(ctx, t)
	}

	ss, err := s.mcp.Connect(ctx, t, &mcp.ServerSessionOptions{State: st.SessionState()})
	if err != nil {
		return fmt.Errorf("failed to connect transport: %w", err)
	}
	waitErr := ss.Wait()

	id := st.SessionID()
	state := st.SessionState()
	if id == "" || state == nil || state.InitializeParams == nil {
		return waitErr
	}
	if err := s.store.Save(ctx, id, state, s.ttl); err != nil {
		return errors.Join(waitErr, fmt.Errorf("failed to save session %s: %w", id, err))
	}
	return waitErr
}

// apply registers every declaration, resolving handlers lazily through the container.
func (s *Server) apply(m *config.Manifest) error {
	return guard(func() {
		for _, t := range m.Tools {
			s.mcp.AddTool(toTool(t), lazyToolHandler(s.container, t.Name, t.Handler))
		}
		for _, r := range m.Resources {
			s.mcp.AddResource(toResource(r), lazyResourceHandler(s.container, r.URI, r.Handler))
		}
		for _, r := range m.ResourceTemplates {
			s.mcp.AddResourceTemplate(toResourceTemplate(r), lazyResourceHandler(s.container, r.URITemplate, r.Handler))
		}
		for _, p := range m.Prompts {
			s.mcp.AddPrompt(toPrompt(p), lazyPromptHandler(s.container, p.Name, p.Handler))
		}
	})
}

// applyDiscovered registers discovered components that no manual declaration shadows, and
// removes components that disappeared since the previous scan.
func (s *Server) applyDiscovered(m *config.Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := s.manual.exclude(m)
	next := newNameSet(filtered)
	stale := s.discovered.minus(next)

	if err := guard(func() {
		if len(stale.tools) > 0 {
			s.mcp.RemoveTools(stale.tools.list()...)
		}
		if len(stale.resources) > 0 {
			s.mcp.RemoveResources(stale.resources.list()...)
		}
		if len(stale.templates) > 0 {
			s.mcp.RemoveResourceTemplates(stale.templates.list()...)
		}
		if len(stale.prompts) > 0 {
			s.mcp.RemovePrompts(stale.prompts.list()...)
		}
	}); err != nil {
		return err
	}
	if err := s.apply(filtered); err != nil {
		return err
	}
	s.discovered = next
	return nil
}

func (s *Server) onManifestChange(ctx context.Context, m *config.Manifest) {
	if err := s.applyDiscovered(m); err != nil {
		s.logger.Error("Failed to apply discovered components", "error", err)
		return
	}
	s.dispatch(ctx, events.DiscoveryApplied, map[string]any{
		"tools":              len(m.Tools),
		"resources":          len(m.Resources),
		"resource_templates": len(m.ResourceTemplates),
		"prompts":            len(m.Prompts),
	})
}

func (s *Server) dispatch(ctx context.Context, name string, attrs map[string]any) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Dispatch(ctx, events.New(name, s.info.Key, attrs))
}
