// internal/ui/styles.go
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Nord-ish fixed palette.
var (
	textPrimary   = lipgloss.Color("#D8DEE9")
	textFaint     = lipgloss.Color("#616E88")
	accentColor   = lipgloss.Color("#88C0D0")
	successColor  = lipgloss.Color("#A3BE8C")
	errorColor    = lipgloss.Color("#BF616A")
	warningColor  = lipgloss.Color("#EBCB8B")
	selectedColor = lipgloss.Color("#81A1C1")
	bgSecondary   = lipgloss.Color("#3B4252")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			Padding(0, 1)

	BreadcrumbStyle = lipgloss.NewStyle().
			Foreground(textFaint)

	SourceTagStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	ItemStyle = lipgloss.NewStyle().
			Foreground(textPrimary).
			PaddingLeft(2)

	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(selectedColor).
				Bold(true).
				PaddingLeft(0)

	FaintStyle = lipgloss.NewStyle().
			Foreground(textFaint)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(textPrimary).
			Background(bgSecondary).
			Padding(0, 1)

	StatusInfoStyle = lipgloss.NewStyle().
			Foreground(successColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	PopupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(1, 2)

	PromptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	InputStyle = lipgloss.NewStyle().
			Foreground(textPrimary)
)
