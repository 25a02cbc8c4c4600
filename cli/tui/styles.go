package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rewind-hq/rewind/core/enforce"
)

var (
	// Outcome colors.
	colorBlocked = lipgloss.Color("#FF0000")
	colorWarned  = lipgloss.Color("#FF8C00")
	colorMocked  = lipgloss.Color("#7D56F4")
	colorAllowed = lipgloss.Color("#A3BE8C")

	// UI colors.
	colorTitle    = lipgloss.Color("#FFFFFF")
	colorSubtle   = lipgloss.Color("#666666")
	colorSelected = lipgloss.Color("#7D56F4")

	// Styles.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorTitle)

	subtleStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSelected)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colorSubtle)

	effectTypeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#AAAAAA"))

	sourceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#88C0D0"))

	contextHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#A3BE8C"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#BF616A"))
)

// outcomeStyle returns a styled outcome badge.
func outcomeStyle(o enforce.Outcome) lipgloss.Style {
	var color lipgloss.Color
	switch o {
	case enforce.OutcomeBlocked:
		color = colorBlocked
	case enforce.OutcomeWarned:
		color = colorWarned
	case enforce.OutcomeMocked:
		color = colorMocked
	default:
		color = colorAllowed
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color)
}

// outcomeBadge returns a short outcome string for list display.
func outcomeBadge(o enforce.Outcome) string {
	style := outcomeStyle(o)
	switch o {
	case enforce.OutcomeBlocked:
		return style.Render("BLOCK")
	case enforce.OutcomeWarned:
		return style.Render(" WARN")
	case enforce.OutcomeMocked:
		return style.Render(" MOCK")
	default:
		return style.Render("ALLOW")
	}
}
