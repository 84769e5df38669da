package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/klabast/wb-services/trace/internal/journal"
)

// ─── Colors ──────────────────────────────────────────────────────────────────

var (
	colorOverlay = lipgloss.Color("#6e6a86")
	colorText    = lipgloss.Color("#e0def4")
	colorSubtext = lipgloss.Color("#908caa")
	colorAccent  = lipgloss.Color("#c4a7e7")
	colorGreen   = lipgloss.Color("#9ccfd8")
	colorPeach   = lipgloss.Color("#f6c177")
	colorRed     = lipgloss.Color("#eb6f92")
	colorBlue    = lipgloss.Color("#31748f")
)

// moodColors follow the mood from best to worst
var moodColors = map[journal.MoodValue]lipgloss.Color{
	journal.MoodGreat: colorGreen,
	journal.MoodGood:  colorBlue,
	journal.MoodOkay:  colorText,
	journal.MoodBad:   colorPeach,
	journal.MoodAwful: colorRed,
}

// ─── Layout Styles ───────────────────────────────────────────────────────────

var (
	appStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorSubtext).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorOverlay).
			Padding(0, 1).
			MarginLeft(2).
			Width(44)
)

// ─── Grid Styles ─────────────────────────────────────────────────────────────

var (
	weekdayStyle = lipgloss.NewStyle().
			Foreground(colorSubtext).
			Width(5).
			Align(lipgloss.Center)

	dayStyle = lipgloss.NewStyle().
			Width(5).
			Align(lipgloss.Center)

	outsideDayStyle = dayStyle.
			Foreground(colorOverlay)

	entryDayStyle = dayStyle.
			Foreground(colorGreen).
			Bold(true)

	todayStyle = dayStyle.
			Underline(true)

	selectedStyle = dayStyle.
			Foreground(lipgloss.Color("#191724")).
			Background(colorAccent).
			Bold(true)
)

// ─── Panel Styles ────────────────────────────────────────────────────────────

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(colorSubtext)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)
)

func moodStyle(m journal.MoodValue) lipgloss.Style {
	c, ok := moodColors[m]
	if !ok {
		c = colorText
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}
