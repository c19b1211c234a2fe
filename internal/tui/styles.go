package tui

import "github.com/charmbracelet/lipgloss"

// theme holds the styles for one colour scheme.
type theme struct {
	title    lipgloss.Style
	subtitle lipgloss.Style
	success  lipgloss.Style
	err      lipgloss.Style
	warning  lipgloss.Style
	info     lipgloss.Style
	dim      lipgloss.Style
	selected lipgloss.Style
	tab      lipgloss.Style
	tabOn    lipgloss.Style
	bar      lipgloss.Style
	box      lipgloss.Style
	accent   lipgloss.Color
}

func newTheme(dark bool) theme {
	accent := lipgloss.Color("#7C3AED")
	text := lipgloss.Color("#1F2937")
	muted := lipgloss.Color("#6C757D")
	border := lipgloss.Color("#D1D5DB")
	if dark {
		accent = lipgloss.Color("#A78BFA")
		text = lipgloss.Color("#F3F4F6")
		muted = lipgloss.Color("#9CA3AF")
		border = lipgloss.Color("#4B5563")
	}

	return theme{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),
		subtitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(text),
		success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#2F9E44")),
		err: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")),
		warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59F00")),
		info: lipgloss.NewStyle().
			Foreground(text),
		dim: lipgloss.NewStyle().
			Foreground(muted),
		selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),
		tab: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1),
		tabOn: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Underline(true).
			Padding(0, 1),
		bar: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(border).
			PaddingTop(0),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2),
		accent: accent,
	}
}
