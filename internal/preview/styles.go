package preview

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	primaryColor   = lipgloss.Color("39")  // Blue
	secondaryColor = lipgloss.Color("245") // Gray
	accentColor    = lipgloss.Color("212") // Pink
	warningColor   = lipgloss.Color("214") // Orange
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")). // Cyan
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")) // Light yellow

	typeStyle = lipgloss.NewStyle().Foreground(secondaryColor)

	ruleStyle = lipgloss.NewStyle().Foreground(accentColor)

	conditionStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Italic(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Italic(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondaryColor).
			Padding(0, 1)
)
