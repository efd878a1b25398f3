package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pixelpomo/internal/timer"
)

// Color palette
var (
	colorPrimary   = lipgloss.Color("#E94560")
	colorMuted     = lipgloss.Color("#666666")
	colorSuccess   = lipgloss.Color("#4ADE80")
	colorWarning   = lipgloss.Color("#FBBF24")
	colorError     = lipgloss.Color("#E74C3C")
	colorFg        = lipgloss.Color("#E0E0E0")
	colorSubtle    = lipgloss.Color("#3A3A5C")
	colorHighlight = lipgloss.Color("#60A5FA")
	colorFocus     = lipgloss.Color("#F5C542")
)

// modeColors follow the work / short break / long break accents.
var modeColors = map[timer.Mode]lipgloss.Color{
	timer.Work:       colorPrimary,
	timer.ShortBreak: colorSuccess,
	timer.LongBreak:  colorHighlight,
}

func modeStyle(m timer.Mode) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(modeColors[m])
}

// Styles
var (
	// Tabs
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	// Panels
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(1, 2)

	// Modal prompts sit on a double border so they stand out from panels.
	promptStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorFocus).
			Padding(1, 3).
			Align(lipgloss.Center)

	// Board columns
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 1)

	dropTargetStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorFocus).
			Padding(0, 1)

	// Timer
	timerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg).
			Align(lipgloss.Center)

	timerPausedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorWarning).
				Align(lipgloss.Center)

	// Text
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	highlightStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)

	focusStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFocus)

	// Header/footer
	headerStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	// List items
	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	doneItemStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Strikethrough(true)
)
