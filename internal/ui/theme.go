package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Title    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Border   lipgloss.Style
	Hint     lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	TopBar   lipgloss.Style
	Paused   lipgloss.Style
	TabOn    lipgloss.Style
	TabOff   lipgloss.Style
	Selected lipgloss.Style
	Done     lipgloss.Style
	Tags     lipgloss.Style
}

var DefaultTheme = Theme{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1")),
	Label:    lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("#89B4FA")),
	Value:    lipgloss.NewStyle().Foreground(lipgloss.Color("#F2CDCD")),
	Border:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#89B4FA")).Padding(1, 2),
	Hint:     lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("#CBA6F7")),
	Error:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F38BA8")),
	Success:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1")),
	TopBar:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1E1E2E")).Background(lipgloss.Color("#89B4FA")).Padding(0, 1),
	Paused:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1E1E2E")).Background(lipgloss.Color("#F9E2AF")).Padding(0, 1),
	TabOn:    lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("#A6E3A1")).Padding(0, 1),
	TabOff:   lipgloss.NewStyle().Faint(true).Padding(0, 1),
	Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("#F5E0DC")).Background(lipgloss.Color("#313244")),
	Done:     lipgloss.NewStyle().Strikethrough(true).Faint(true),
	Tags:     lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("#CBA6F7")),
}

// MonoTheme avoids color entirely, for terminals that render it badly.
var MonoTheme = Theme{
	Title:    lipgloss.NewStyle().Bold(true),
	Label:    lipgloss.NewStyle().Faint(true),
	Value:    lipgloss.NewStyle(),
	Border:   lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1, 2),
	Hint:     lipgloss.NewStyle().Faint(true),
	Error:    lipgloss.NewStyle().Bold(true),
	Success:  lipgloss.NewStyle().Bold(true),
	TopBar:   lipgloss.NewStyle().Reverse(true).Padding(0, 1),
	Paused:   lipgloss.NewStyle().Reverse(true).Bold(true).Padding(0, 1),
	TabOn:    lipgloss.NewStyle().Bold(true).Underline(true).Padding(0, 1),
	TabOff:   lipgloss.NewStyle().Faint(true).Padding(0, 1),
	Selected: lipgloss.NewStyle().Reverse(true),
	Done:     lipgloss.NewStyle().Faint(true),
	Tags:     lipgloss.NewStyle().Faint(true),
}

// ThemeByName maps the config's theme key; unknown names get the default theme.
func ThemeByName(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mono", "plain":
		return MonoTheme
	default:
		return DefaultTheme
	}
}
