package engine

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/atlanticdynamic/mcpregistry/internal/config"
)

func toImplementation(info ServerInfo) *mcp.Implementation {
	return &mcp.Implementation{
		Name:       info.Name,
		Version:    info.Version,
		WebsiteURL: info.WebsiteURL,
		Icons:      toIcons(info.Icons),
	}
}

func toIcons(icons []config.Icon) []mcp.Icon {
	if len(icons) == 0 {
		return nil
	}
	out := make([]mcp.Icon, 0, len(icons))
	for _, i := range icons {
		out = append(out, mcp.Icon{
			Source:   i.Src,
			MIMEType: i.MIMEType,
			Sizes:    i.Sizes,
			Theme:    mcp.IconTheme(i.Theme),
		})
	}
	return out
}

func toAnnotations(a *config.Annotations) *mcp.Annotations {
	if a == nil {
		return nil
	}
	out := &mcp.Annotations{LastModified: a.LastModified, Priority: a.Priority}
	for _, role := range a.Audience {
		out.Audience = append(out.Audience, mcp.Role(role))
	}
	return out
}

func toTool(t config.Tool) *mcp.Tool {
	tool := &mcp.Tool{
		Meta:        mcp.Meta(t.Meta),
		Name:        t.Name,
		Title:       t.Title,
		Description: t.Description,
		Icons:       toIcons(t.Icons),
	}
	// a typed nil map would hide a missing schema from the engine's check
	if t.InputSchema != nil {
		tool.InputSchema = t.InputSchema
	}
	if t.OutputSchema != nil {
		tool.OutputSchema = t.OutputSchema
	}
	if a := t.Annotations; a != nil {
		tool.Annotations = &mcp.ToolAnnotations{
			Title:           a.Title,
			ReadOnlyHint:    a.ReadOnlyHint,
			DestructiveHint: a.DestructiveHint,
			IdempotentHint:  a.IdempotentHint,
			OpenWorldHint:   a.OpenWorldHint,
		}
	}
	return tool
}

func toResource(r config.Resource) *mcp.Resource {
	return &mcp.Resource{
		Meta:        mcp.Meta(r.Meta),
		URI:         r.URI,
		Name:        r.Name,
		Title:       r.Title,
		Description: r.Description,
		MIMEType:    r.MIMEType,
		Size:        r.Size,
		Annotations: toAnnotations(r.Annotations),
		Icons:       toIcons(r.Icons),
	}
}

func toResourceTemplate(r config.ResourceTemplate) *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Meta:        mcp.Meta(r.Meta),
		URITemplate: r.URITemplate,
		Name:        r.Name,
		Title:       r.Title,
		Description: r.Description,
		MIMEType:    r.MIMEType,
		Annotations: toAnnotations(r.Annotations),
		Icons:       toIcons(r.Icons),
	}
}

func toPrompt(p config.Prompt) *mcp.Prompt {
	prompt := &mcp.Prompt{
		Meta:        mcp.Meta(p.Meta),
		Name:        p.Name,
		Title:       p.Title,
		Description: p.Description,
		Icons:       toIcons(p.Icons),
	}
	for _, arg := range p.Arguments {
		prompt.Arguments = append(prompt.Arguments, &mcp.PromptArgument{
			Name:        arg.Name,
			Title:       arg.Title,
			Description: arg.Description,
			Required:    arg.Required,
		})
	}
	return prompt
}
