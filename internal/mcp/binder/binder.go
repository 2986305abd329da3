// Package binder resolves the handler, declaration and loader references of a server entry
// and hands them to the engine builder.
package binder

import (
	"github.com/atlanticdynamic/mcpregistry/internal/config"
	"github.com/atlanticdynamic/mcpregistry/internal/lookup"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/engine"
)

type (
	RequestHandler      = engine.RequestHandler
	NotificationHandler = engine.NotificationHandler
	Loader              = engine.Loader
)

// HandlerBinder receives resolved request and notification handlers.
type HandlerBinder interface {
	AddRequestHandler(h engine.RequestHandler) *engine.Builder
	AddNotificationHandler(h engine.NotificationHandler) *engine.Builder
}

// RegistrationBinder receives manual declarations.
type RegistrationBinder interface {
	AddTool(t config.Tool) *engine.Builder
	AddResource(r config.Resource) *engine.Builder
	AddResourceTemplate(r config.ResourceTemplate) *engine.Builder
	AddPrompt(p config.Prompt) *engine.Builder
}

// LoaderBinder receives resolved loaders.
type LoaderBinder interface {
	AddLoaders(loaders ...engine.Loader) *engine.Builder
}

var (
	_ HandlerBinder      = (*engine.Builder)(nil)
	_ RegistrationBinder = (*engine.Builder)(nil)
	_ LoaderBinder       = (*engine.Builder)(nil)
)

// BindHandlers attaches every request_handlers and notification_handlers entry that
// resolves to the matching handler type. Other entries are skipped.
func BindHandlers(cfg *config.Server, lk lookup.Lookup, b HandlerBinder) {
	for _, name := range cfg.RequestHandlers {
		if h, ok := lookup.Resolve[RequestHandler](lk, name); ok {
			b.AddRequestHandler(h)
		}
	}
	for _, name := range cfg.NotificationHandlers {
		if h, ok := lookup.Resolve[NotificationHandler](lk, name); ok {
			b.AddNotificationHandler(h)
		}
	}
}

// BindRegistrations forwards manual declarations as written. Handler references are
// resolved by the engine when the component is invoked.
func BindRegistrations(cfg *config.Server, b RegistrationBinder) {
	for _, t := range cfg.Tools {
		b.AddTool(t)
	}
	for _, r := range cfg.Resources {
		b.AddResource(r)
	}
	for _, r := range cfg.ResourceTemplates {
		b.AddResourceTemplate(r)
	}
	for _, p := range cfg.Prompts {
		b.AddPrompt(p)
	}
}

// BindLoaders attaches every loaders entry that resolves to a Loader.
func BindLoaders(cfg *config.Server, lk lookup.Lookup, b LoaderBinder) {
	var loaders []Loader
	for _, name := range cfg.Loaders {
		if l, ok := lookup.Resolve[Loader](lk, name); ok {
			loaders = append(loaders, l)
		}
	}
	if len(loaders) > 0 {
		b.AddLoaders(loaders...)
	}
}
