// Package capabilities turns declarative capability flags into the descriptor a server
// advertises during the initialize handshake.
package capabilities

import (
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Flags is the configuration form of the capability set. A nil field means "not configured".
type Flags struct {
	Tools                *bool `toml:"tools"`
	ToolsListChanged     *bool `toml:"tools_list_changed"`
	Resources            *bool `toml:"resources"`
	ResourcesSubscribe   *bool `toml:"resources_subscribe"`
	ResourcesListChanged *bool `toml:"resources_list_changed"`
	Prompts              *bool `toml:"prompts"`
	PromptsListChanged   *bool `toml:"prompts_list_changed"`
	Logging              *bool `toml:"logging"`
	Completions          *bool `toml:"completions"`
}

// Descriptor is the composed capability set.
//
// Sub-flags (the list-changed flags and ResourcesSubscribe) are carried as given, even when
// the parent capability is off.
type Descriptor struct {
	Tools                bool
	ToolsListChanged     bool
	Resources            bool
	ResourcesSubscribe   bool
	ResourcesListChanged bool
	Prompts              bool
	PromptsListChanged   bool
	Logging              bool
	Completions          bool
}

// Compose fills absent flags with their defaults: everything off except completions.
func Compose(f Flags) Descriptor {
	return Descriptor{
		Tools:                valueOr(f.Tools, false),
		ToolsListChanged:     valueOr(f.ToolsListChanged, false),
		Resources:            valueOr(f.Resources, false),
		ResourcesSubscribe:   valueOr(f.ResourcesSubscribe, false),
		ResourcesListChanged: valueOr(f.ResourcesListChanged, false),
		Prompts:              valueOr(f.Prompts, false),
		PromptsListChanged:   valueOr(f.PromptsListChanged, false),
		Logging:              valueOr(f.Logging, false),
		Completions:          valueOr(f.Completions, true),
	}
}

// ServerCapabilities maps the descriptor onto the engine's capability structure.
// A disabled capability is left nil so it is omitted from the handshake.
func (d Descriptor) ServerCapabilities() *mcpsdk.ServerCapabilities {
	caps := &mcpsdk.ServerCapabilities{}
	if d.Tools {
		caps.Tools = &mcpsdk.ToolCapabilities{ListChanged: d.ToolsListChanged}
	}
	if d.Resources {
		caps.Resources = &mcpsdk.ResourceCapabilities{
			Subscribe:   d.ResourcesSubscribe,
			ListChanged: d.ResourcesListChanged,
		}
	}
	if d.Prompts {
		caps.Prompts = &mcpsdk.PromptCapabilities{ListChanged: d.PromptsListChanged}
	}
	if d.Logging {
		caps.Logging = &mcpsdk.LoggingCapabilities{}
	}
	if d.Completions {
		caps.Completions = &mcpsdk.CompletionCapabilities{}
	}
	return caps
}

// Enabled lists the names of the capabilities that are switched on, in handshake order.
func (d Descriptor) Enabled() []string {
	var names []string
	if d.Tools {
		names = append(names, "tools")
	}
	if d.Resources {
		names = append(names, "resources")
	}
	if d.Prompts {
		names = append(names, "prompts")
	}
	if d.Logging {
		names = append(names, "logging")
	}
	if d.Completions {
		names = append(names, "completions")
	}
	return names
}

func valueOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
