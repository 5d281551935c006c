package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	peer     lipgloss.Style
	detail   lipgloss.Style
	section  lipgloss.Style
	empty    lipgloss.Style
	dotReady lipgloss.Style
	dotStuck lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		header:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		peer:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		section:  lipgloss.NewStyle().MarginTop(1),
		empty:    lipgloss.NewStyle().Faint(true),
		dotReady: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		dotStuck: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
}
