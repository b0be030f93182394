package ui

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Clock   lipgloss.Style
	Running lipgloss.Style
	Paused  lipgloss.Style
	Border  lipgloss.Style
	Hint    lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Toast   lipgloss.Style
}

var DefaultTheme = Theme{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1")),
	Label:   lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("#89B4FA")),
	Value:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F2CDCD")),
	Clock:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9E2AF")).Padding(0, 2),
	Running: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1")),
	Paused:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAB387")),
	Border:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1),
	Hint:    lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("#CBA6F7")),
	Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F38BA8")),
	Success: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1")),
	Toast:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1E1E2E")).Background(lipgloss.Color("#F9E2AF")).Padding(0, 1),
}

var LightTheme = Theme{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#40A02B")),
	Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("#1E66F5")),
	Value:   lipgloss.NewStyle().Foreground(lipgloss.Color("#4C4F69")),
	Clock:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#DF8E1D")).Padding(0, 2),
	Running: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#40A02B")),
	Paused:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FE640B")),
	Border:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#9CA0B0")).Padding(1),
	Hint:    lipgloss.NewStyle().Foreground(lipgloss.Color("#8839EF")),
	Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#D20F39")),
	Success: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#40A02B")),
	Toast:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EFF1F5")).Background(lipgloss.Color("#DF8E1D")).Padding(0, 1),
}

var MonoTheme = Theme{
	Title:   lipgloss.NewStyle().Bold(true),
	Label:   lipgloss.NewStyle().Faint(true),
	Value:   lipgloss.NewStyle(),
	Clock:   lipgloss.NewStyle().Bold(true).Padding(0, 2),
	Running: lipgloss.NewStyle().Bold(true),
	Paused:  lipgloss.NewStyle().Faint(true),
	Border:  lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1),
	Hint:    lipgloss.NewStyle().Faint(true),
	Error:   lipgloss.NewStyle().Bold(true),
	Success: lipgloss.NewStyle().Bold(true),
	Toast:   lipgloss.NewStyle().Reverse(true).Padding(0, 1),
}

// ThemeFor maps display.theme onto a Theme. Unknown names get the default.
func ThemeFor(name string) Theme {
	switch name {
	case "light":
		return LightTheme
	case "mono":
		return MonoTheme
	default:
		return DefaultTheme
	}
}
