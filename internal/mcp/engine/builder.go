// Package engine assembles go-sdk MCP servers from resolved configuration. The Builder
// collects settings, registrations and collaborators; Build turns them into a Server.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/atlanticdynamic/mcpregistry/internal/config"
	"github.com/atlanticdynamic/mcpregistry/internal/lookup"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/capabilities"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/discovery"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/events"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/session"
)

var (
	_ session.Binder   = (*Builder)(nil)
	_ discovery.Binder = (*Builder)(nil)
)

// ServerInfo is the identity a server reports during initialize.
type ServerInfo struct {
	// Key is the configuration key of the entry, used in logs and events.
	Key         string
	Name        string
	Version     string
	Description string
	WebsiteURL  string
	Icons       []config.Icon
}

// Builder accumulates everything needed to construct one Server. The zero value is not
// usable; call NewBuilder.
type Builder struct {
	info       ServerInfo
	container  lookup.Lookup
	logger     *slog.Logger
	dispatcher events.Dispatcher

	protocolVersion string
	pageSize        *int
	instructions    string
	capabilities    *capabilities.Descriptor

	discovery *discovery.Settings

	store   session.Store
	factory session.Factory
	ttl     time.Duration

	requestHandlers      []RequestHandler
	notificationHandlers []NotificationHandler

	declarations config.Manifest
	loaders      []Loader
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		container: lookup.Empty{},
		ttl:       session.DefaultTTL,
	}
}

func (b *Builder) SetServerInfo(info ServerInfo) *Builder {
	b.info = info
	return b
}

// SetContainer sets the lookup that declared handler references are resolved against.
func (b *Builder) SetContainer(lk lookup.Lookup) *Builder {
	if lk != nil {
		b.container = lk
	}
	return b
}

func (b *Builder) SetLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) SetEventDispatcher(d events.Dispatcher) *Builder {
	b.dispatcher = d
	return b
}

// SetProtocolVersion forces the version reported in initialize results.
func (b *Builder) SetProtocolVersion(v string) *Builder {
	b.protocolVersion = v
	return b
}

func (b *Builder) SetPaginationLimit(limit int) *Builder {
	b.pageSize = &limit
	return b
}

func (b *Builder) SetInstructions(text string) *Builder {
	b.instructions = text
	return b
}

// SetCapabilities replaces the engine's inferred capabilities with d.
func (b *Builder) SetCapabilities(d capabilities.Descriptor) *Builder {
	b.capabilities = &d
	return b
}

// SetDiscovery implements discovery.Binder.
func (b *Builder) SetDiscovery(settings discovery.Settings) {
	b.discovery = &settings
}

// SetSession implements session.Binder. A nil factory keeps the default ID generator.
func (b *Builder) SetSession(store session.Store, factory session.Factory, ttl time.Duration) {
	b.store = store
	b.factory = factory
	b.ttl = ttl
}

func (b *Builder) AddRequestHandler(h RequestHandler) *Builder {
	b.requestHandlers = append(b.requestHandlers, h)
	return b
}

func (b *Builder) AddNotificationHandler(h NotificationHandler) *Builder {
	b.notificationHandlers = append(b.notificationHandlers, h)
	return b
}

func (b *Builder) AddTool(t config.Tool) *Builder {
	b.declarations.Tools = append(b.declarations.Tools, t)
	return b
}

func (b *Builder) AddResource(r config.Resource) *Builder {
	b.declarations.Resources = append(b.declarations.Resources, r)
	return b
}

func (b *Builder) AddResourceTemplate(r config.ResourceTemplate) *Builder {
	b.declarations.ResourceTemplates = append(b.declarations.ResourceTemplates, r)
	return b
}

func (b *Builder) AddPrompt(p config.Prompt) *Builder {
	b.declarations.Prompts = append(b.declarations.Prompts, p)
	return b
}

func (b *Builder) AddLoaders(loaders ...Loader) *Builder {
	b.loaders = append(b.loaders, loaders...)
	return b
}

// Build constructs the server: engine options, middleware, discovered components, manual
// declarations, then loaders. Declarations the engine rejects are reported as
// ErrInvalidRegistration.
func (b *Builder) Build(ctx context.Context) (*Server, error) {
	if b.protocolVersion != "" && !IsSupportedProtocolVersion(b.protocolVersion) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProtocolVersion, b.protocolVersion)
	}
	if b.pageSize != nil && *b.pageSize < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPaginationLimit, *b.pageSize)
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.WithGroup("engine.Server").With("server", b.info.Key)

	s := &Server{
		info:                 b.info,
		impl:                 toImplementation(b.info),
		container:            b.container,
		logger:               logger,
		dispatcher:           b.dispatcher,
		protocolVersion:      b.protocolVersion,
		store:                b.store,
		factory:              b.factory,
		ttl:                  b.ttl,
		requestHandlers:      b.requestHandlers,
		notificationHandlers: b.notificationHandlers,
		manual:               newNameSet(&b.declarations),
		discovered:           newNameSet(nil),
	}
	if s.store == nil {
		s.store = session.NewMemoryStore()
		s.ttl = session.DefaultTTL
	}
	if s.factory == nil {
		s.factory = session.UUIDFactory{}
	}

	opts := &mcp.ServerOptions{
		Instructions: b.instructions,
		Logger:       logger,
		GetSessionID: s.factory.NewID,
	}
	if b.pageSize != nil {
		opts.PageSize = *b.pageSize
	}
	if b.capabilities != nil {
		opts.Capabilities = b.capabilities.ServerCapabilities()
	}

	if err := guard(func() { s.mcp = mcp.NewServer(s.impl, opts) }); err != nil {
		return nil, err
	}
	s.mcp.AddReceivingMiddleware(s.middleware)

	if b.discovery != nil {
		s.scanner = discovery.NewScanner(*b.discovery, discovery.WithLogHandler(logger.Handler()))
		manifest, err := s.scanner.Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDiscoveryFailed, err)
		}
		if err := s.applyDiscovered(manifest); err != nil {
			return nil, err
		}
		if b.discovery.Watch {
			w, err := discovery.NewWatcher(s.scanner, s.onManifestChange,
				discovery.WithName(b.info.Key),
				discovery.WithWatcherLogHandler(logger.Handler()))
			if err != nil {
				return nil, err
			}
			s.watcher = w
		}
	}

	if err := s.apply(&b.declarations); err != nil {
		return nil, err
	}

	for _, l := range b.loaders {
		var loadErr error
		if err := guard(func() { loadErr = l.Load(ctx, s.mcp) }); err != nil {
			return nil, err
		}
		if loadErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoaderFailed, loadErr)
		}
	}

	s.dispatch(ctx, events.ServerBuilt, map[string]any{
		"name":    s.impl.Name,
		"version": s.impl.Version,
	})
	logger.Debug("Server built",
		"tools", len(b.declarations.Tools),
		"resources", len(b.declarations.Resources),
		"resource_templates", len(b.declarations.ResourceTemplates),
		"prompts", len(b.declarations.Prompts),
		"loaders", len(b.loaders))
	return s, nil
}

// guard turns an engine panic into ErrInvalidRegistration.
func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInvalidRegistration, r)
		}
	}()
	fn()
	return nil
}
