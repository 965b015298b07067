package tui

import "github.com/charmbracelet/lipgloss"

// Instrument palette
var (
	ColorReadout = lipgloss.Color("#00FF41")
	ColorLabel   = lipgloss.Color("#00CC33")
	ColorDim     = lipgloss.Color("#004A0A")
	ColorBorder  = lipgloss.Color("#00AA22")
	ColorWarning = lipgloss.Color("#FFAA00")
	ColorError   = lipgloss.Color("#FF3300")
	ColorBar     = lipgloss.Color("#002200")
)

var (
	StyleTitleBar = lipgloss.NewStyle().
			Background(ColorBar).
			Foreground(ColorReadout).
			Bold(true).
			Padding(0, 1)

	StyleStatusBar = lipgloss.NewStyle().
			Background(ColorBar).
			Foreground(ColorLabel).
			Padding(0, 1)

	StylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2)

	StyleReadout = lipgloss.NewStyle().
			Foreground(ColorReadout).
			Bold(true)

	StyleLabel = lipgloss.NewStyle().
			Foreground(ColorLabel)

	StyleValue = lipgloss.NewStyle().
			Foreground(ColorReadout)

	StyleWrapped = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	StyleLive = lipgloss.NewStyle().
			Foreground(ColorReadout).
			Bold(true)

	StylePaused = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	StyleClosed = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	StyleHelp = lipgloss.NewStyle().
			Foreground(ColorDim)
)
