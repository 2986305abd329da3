package fancy

import (
	"github.com/charmbracelet/lipgloss"
)

// Common styles that can be used across the application
var (
	RootStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Italic(true)

	BranchStyle = lipgloss.NewStyle().
			Foreground(ColorDarkGray)

	ComponentStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	ServerStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	RouteStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	ListenerStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta)

	CommandStyle = lipgloss.NewStyle().
			Foreground(ColorPurple)

	ValidStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)
)

// ServerText styles a server entry key
func ServerText(text string) string {
	return ServerStyle.Render(text)
}

// RouteText styles a route text
func RouteText(text string) string {
	return RouteStyle.Render(text)
}

// ListenerText styles a listener text
func ListenerText(text string) string {
	return ListenerStyle.Render(text)
}

// CommandText styles a stdio command name
func CommandText(text string) string {
	return CommandStyle.Render(text)
}

// ValidText styles valid status text (green)
func ValidText(text string) string {
	return ValidStyle.Render(text)
}

// ErrorText styles error text (red)
func ErrorText(text string) string {
	return ErrorStyle.Render(text)
}

// PathText styles file paths (gray)
func PathText(text string) string {
	return InfoStyle.Render(text)
}

// CountText styles count numbers (cyan)
func CountText(text string) string {
	return ComponentStyle.Render(text)
}
