package engine

import (
	"maps"
	"slices"

	"github.com/atlanticdynamic/mcpregistry/internal/config"
)

type names map[string]struct{}

func (n names) has(name string) bool {
	_, ok := n[name]
	return ok
}

func (n names) list() []string {
	return slices.Sorted(maps.Keys(n))
}

// nameSet indexes the identifying keys of a manifest: tool and prompt names, resource URIs
// and resource URI templates.
type nameSet struct {
	tools     names
	resources names
	templates names
	prompts   names
}

func newNameSet(m *config.Manifest) nameSet {
	set := nameSet{tools: names{}, resources: names{}, templates: names{}, prompts: names{}}
	if m == nil {
		return set
	}
	for _, t := range m.Tools {
		set.tools[t.Name] = struct{}{}
	}
	for _, r := range m.Resources {
		set.resources[r.URI] = struct{}{}
	}
	for _, r := range m.ResourceTemplates {
		set.templates[r.URITemplate] = struct{}{}
	}
	for _, p := range m.Prompts {
		set.prompts[p.Name] = struct{}{}
	}
	return set
}

// exclude returns the entries of m whose keys are not in the set.
func (s nameSet) exclude(m *config.Manifest) *config.Manifest {
	out := &config.Manifest{}
	if m == nil {
		return out
	}
	for _, t := range m.Tools {
		if !s.tools.has(t.Name) {
			out.Tools = append(out.Tools, t)
		}
	}
	for _, r := range m.Resources {
		if !s.resources.has(r.URI) {
			out.Resources = append(out.Resources, r)
		}
	}
	for _, r := range m.ResourceTemplates {
		if !s.templates.has(r.URITemplate) {
			out.ResourceTemplates = append(out.ResourceTemplates, r)
		}
	}
	for _, p := range m.Prompts {
		if !s.prompts.has(p.Name) {
			out.Prompts = append(out.Prompts, p)
		}
	}
	return out
}

// minus returns the keys present in s but not in other.
func (s nameSet) minus(other nameSet) nameSet {
	diff := func(a, b names) names {
		out := names{}
		for k := range a {
			if !b.has(k) {
				out[k] = struct{}{}
			}
		}
		return out
	}
	return nameSet{
		tools:     diff(s.tools, other.tools),
		resources: diff(s.resources, other.resources),
		templates: diff(s.templates, other.templates),
		prompts:   diff(s.prompts, other.prompts),
	}
}
