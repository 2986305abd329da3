package config

import (
	"fmt"
	"strings"

	"github.com/atlanticdynamic/mcpregistry/internal/fancy"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/capabilities"
	"github.com/charmbracelet/lipgloss/tree"
)

// String returns a pretty-printed tree representation of the config
func (c *Config) String() string {
	return ConfigTree(c)
}

// ConfigTree converts a Config struct into a rendered tree string
func ConfigTree(cfg *Config) string {
	t := fancy.Tree()
	t.Root(fancy.RootStyle.Render(fmt.Sprintf("mcpregistry config (%s)", cfg.Version)))

	t.Child(fancy.BranchNode("Logging", "").Child(
		fmt.Sprintf("Format: %s", cfg.Logging.Format),
		fmt.Sprintf("Level: %s", cfg.Logging.Level),
	))

	listeners := fancy.BranchNode("Listeners", fmt.Sprintf("(%d)", len(cfg.Listeners)))
	for _, l := range cfg.Listeners {
		listeners.Child(fmt.Sprintf("%s %s", fancy.ListenerText(l.ID), fancy.PathText(l.Address)))
	}
	t.Child(listeners)

	collaborators := fancy.BranchNode("Collaborators", fmt.Sprintf("(%d)", len(cfg.Collaborators)))
	for _, col := range cfg.Collaborators {
		collaborators.Child(fmt.Sprintf("%s %s", col.ID, fancy.PathText(string(col.Type))))
	}
	t.Child(collaborators)

	servers := fancy.BranchNode("Servers", fmt.Sprintf("(%d)", len(cfg.Servers)))
	for i := range cfg.Servers {
		servers.Child(cfg.Servers[i].ToTree())
	}
	t.Child(servers)

	return t.String()
}

// ToTree renders one server entry.
func (s *Server) ToTree() *tree.Tree {
	label := fancy.ServerText(s.Key)
	if !s.IsEnabled() {
		label += " " + fancy.ErrorText("(disabled)")
	}
	node := fancy.Node(label)

	if s.Name != "" {
		node.Child(fmt.Sprintf("Name: %s", s.Name))
	}
	if s.HTTP != nil {
		node.Child(fmt.Sprintf("HTTP: %s on %s",
			fancy.RouteText(s.HTTP.RoutePath()), fancy.ListenerText(s.HTTP.ListenerID())))
	}
	if s.Stdio != nil {
		node.Child(fmt.Sprintf("Stdio: %s", fancy.CommandText(s.Stdio.CommandName())))
	}
	if s.Capabilities != nil {
		enabled := capabilities.Compose(*s.Capabilities).Enabled()
		node.Child(fmt.Sprintf("Capabilities: %s", strings.Join(enabled, ", ")))
	}
	if n := len(s.Tools) + len(s.Resources) + len(s.ResourceTemplates) + len(s.Prompts); n > 0 {
		node.Child(fmt.Sprintf("Declarations: %s", fancy.CountText(fmt.Sprint(n))))
	}
	if len(s.RequestHandlers)+len(s.NotificationHandlers) > 0 {
		node.Child(fmt.Sprintf("Handlers: %s",
			fancy.TruncateString(strings.Join(append(append([]string{}, s.RequestHandlers...), s.NotificationHandlers...), ", "), 60)))
	}
	return node
}
