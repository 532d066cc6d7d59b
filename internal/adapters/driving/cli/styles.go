package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

// isTerminal is replaced in tests.
var isTerminal = term.IsTerminal

// render applies style only when writing to a terminal, keeping piped
// output free of escape codes.
func render(cmd *cobra.Command, style lipgloss.Style, s string) string {
	if !stdoutIsTerminal(cmd) {
		return s
	}
	return style.Render(s)
}
