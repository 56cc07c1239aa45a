package tui

import "github.com/charmbracelet/lipgloss"

// Color palette shared by all TUI elements.
var (
	salmonPink  = lipgloss.Color("#FFB3BA") // accent
	coralPink   = lipgloss.Color("#FFCCCB") // operator text
	mintGreen   = lipgloss.Color("#A8E6CF") // success, tools
	mutedGray   = lipgloss.Color("#6B7280") // secondary text
	brightWhite = lipgloss.Color("#F9FAFB") // primary text
	alertRed    = lipgloss.Color("203")
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	tipsStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	userStyle = lipgloss.NewStyle().
			Foreground(coralPink).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	toolStyle = lipgloss.NewStyle().
			Foreground(mintGreen)

	toolResultStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	questionStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(alertRed)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(salmonPink)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(salmonPink).
			Padding(0, 1)
)
