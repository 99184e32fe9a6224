package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Title styling
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	// Step header styling
	StepStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	// Help text styling
	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	// Warning styling
	WarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	// Error styling
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	// Success styling
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	// Subtle text styling
	SubtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// Step renders a numbered workflow step header.
func Step(n int, title string) string {
	return StepStyle.Render(fmt.Sprintf("[%d] %s", n, title))
}

// Success renders a success line.
func Success(msg string) string {
	return SuccessStyle.Render("✓ " + msg)
}

// Warn renders a warning line.
func Warn(msg string) string {
	return WarnStyle.Render("⚠️  " + msg)
}

// Error renders an error line.
func Error(msg string) string {
	return ErrorStyle.Render("✗ " + msg)
}
