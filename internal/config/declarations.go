package config

// Icon is a sized image advertised for a server or component.
type Icon struct {
	Src      string   `toml:"src"`
	MIMEType string   `toml:"mime_type"`
	Sizes    []string `toml:"sizes"`
	Theme    string   `toml:"theme"`
}

// Annotations are client hints attached to resources and templates.
type Annotations struct {
	Audience     []string `toml:"audience"`
	Priority     float64  `toml:"priority"`
	LastModified string   `toml:"last_modified"`
}

// ToolAnnotations are client hints attached to tools.
type ToolAnnotations struct {
	Title           string `toml:"title"`
	ReadOnlyHint    bool   `toml:"read_only_hint"`
	DestructiveHint *bool  `toml:"destructive_hint"`
	IdempotentHint  bool   `toml:"idempotent_hint"`
	OpenWorldHint   *bool  `toml:"open_world_hint"`
}

// Tool is a manually declared tool. Handler names a collaborator in the lookup.
type Tool struct {
	Handler      string           `toml:"handler"`
	Name         string           `toml:"name"`
	Title        string           `toml:"title"`
	Description  string           `toml:"description"`
	Annotations  *ToolAnnotations `toml:"annotations"`
	InputSchema  map[string]any   `toml:"input_schema"`
	OutputSchema map[string]any   `toml:"output_schema"`
	Icons        []Icon           `toml:"icons"`
	Meta         map[string]any   `toml:"meta"`
}

// Resource is a manually declared static resource.
type Resource struct {
	Handler     string         `toml:"handler"`
	URI         string         `toml:"uri"`
	Name        string         `toml:"name"`
	Title       string         `toml:"title"`
	Description string         `toml:"description"`
	MIMEType    string         `toml:"mime_type"`
	Size        int64          `toml:"size"`
	Annotations *Annotations   `toml:"annotations"`
	Icons       []Icon         `toml:"icons"`
	Meta        map[string]any `toml:"meta"`
}

// ResourceTemplate is a manually declared parameterised resource.
type ResourceTemplate struct {
	Handler     string         `toml:"handler"`
	URITemplate string         `toml:"uri_template"`
	Name        string         `toml:"name"`
	Title       string         `toml:"title"`
	Description string         `toml:"description"`
	MIMEType    string         `toml:"mime_type"`
	Annotations *Annotations   `toml:"annotations"`
	Icons       []Icon         `toml:"icons"`
	Meta        map[string]any `toml:"meta"`
}

// Prompt is a manually declared prompt.
type Prompt struct {
	Handler     string           `toml:"handler"`
	Name        string           `toml:"name"`
	Title       string           `toml:"title"`
	Description string           `toml:"description"`
	Arguments   []PromptArgument `toml:"arguments"`
	Icons       []Icon           `toml:"icons"`
	Meta        map[string]any   `toml:"meta"`
}

// PromptArgument describes one prompt parameter.
type PromptArgument struct {
	Name        string `toml:"name"`
	Title       string `toml:"title"`
	Description string `toml:"description"`
	Required    bool   `toml:"required"`
}

// Manifest is the shape shared by manual declarations and discovery manifest files.
type Manifest struct {
	Tools             []Tool             `toml:"tools"`
	Resources         []Resource         `toml:"resources"`
	ResourceTemplates []ResourceTemplate `toml:"resource_templates"`
	Prompts           []Prompt           `toml:"prompts"`
}

// IsEmpty reports whether the manifest declares nothing.
func (m *Manifest) IsEmpty() bool {
	return len(m.Tools) == 0 && len(m.Resources) == 0 &&
		len(m.ResourceTemplates) == 0 && len(m.Prompts) == 0
}

// Declarations returns the entry's manual declarations as a manifest.
func (s *Server) Declarations() Manifest {
	return Manifest{
		Tools:             s.Tools,
		Resources:         s.Resources,
		ResourceTemplates: s.ResourceTemplates,
		Prompts:           s.Prompts,
	}
}
