package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mcpsentry/mcpsentry/pkg/finding"
)

// Color palette inspired by top security tools
var (
	// Brand colors
	Primary   = lipgloss.Color("#7D56F4") // Purple
	Secondary = lipgloss.Color("#00D4AA") // Cyan/Teal

	// Severity colors (matching OWASP/Nuclei standards)
	CriticalColor = lipgloss.Color("#FF0000") // Bright red
	HighColor     = lipgloss.Color("#FF6B6B") // Red/Orange
	MediumColor   = lipgloss.Color("#FFD93D") // Yellow
	LowColor      = lipgloss.Color("#6BCB77") // Green
	InfoColor     = lipgloss.Color("#4D96FF") // Blue

	// Status colors
	SuccessColor = lipgloss.Color("#00D26A")
	WarningColor = lipgloss.Color("#FFB800")
	ErrorColor   = lipgloss.Color("#FF3838")
	MutedColor   = lipgloss.Color("#6B7280")
)

// Pre-configured styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(Primary).
			Padding(0, 1)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Secondary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	SafeStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	FailedStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	SkippedStyle = lipgloss.NewStyle().
			Foreground(WarningColor)
)

// SeverityStyle returns the style matching a finding severity.
func SeverityStyle(s finding.Severity) lipgloss.Style {
	switch s {
	case finding.Critical:
		return lipgloss.NewStyle().Foreground(CriticalColor).Bold(true)
	case finding.High:
		return lipgloss.NewStyle().Foreground(HighColor).Bold(true)
	case finding.Medium:
		return lipgloss.NewStyle().Foreground(MediumColor)
	case finding.Low:
		return lipgloss.NewStyle().Foreground(LowColor)
	default:
		return lipgloss.NewStyle().Foreground(InfoColor)
	}
}

// StatusStyle returns the style matching a scan status.
func StatusStyle(s finding.Status) lipgloss.Style {
	switch s {
	case finding.StatusCompleted:
		return SafeStyle
	case finding.StatusFailed:
		return FailedStyle
	case finding.StatusSkipped:
		return SkippedStyle
	default:
		return MutedStyle
	}
}
