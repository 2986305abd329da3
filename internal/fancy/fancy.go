// Package fancy provides pretty printing utilities and styling for CLI output
package fancy

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
)

// Tree returns a new tree with common styling applied
func Tree() *tree.Tree {
	t := tree.New()
	t.EnumeratorStyle(BranchStyle)
	t.Enumerator(tree.RoundedEnumerator)
	return t
}

// BranchNode creates a styled section header node. Children added to the returned tree are
// nested under the header.
func BranchNode(title string, count string) *tree.Tree {
	t := Tree()
	t.Root(lipgloss.JoinHorizontal(
		lipgloss.Top,
		HeaderStyle.Render(title),
		" ",
		InfoStyle.Render(count),
	))
	return t
}

// Node creates an unstyled subtree rooted at an already rendered label.
func Node(label string) *tree.Tree {
	t := Tree()
	t.Root(label)
	return t
}

// TruncateString truncates a string if it exceeds maxLength
func TruncateString(s string, maxLength int) string {
	if maxLength <= 3 || len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}
