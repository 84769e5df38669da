// Package tui implements the Bubbletea terminal UI for trace: a month
// grid with the days that have entries marked, and a side panel showing
// the selected day and the week around it.
//
// Keys:
//
//	h/j/k/l, arrows  move the selection by a day or a week
//	n / p            next / previous month
//	t                jump to today
//	w                toggle the week panel
//	q                quit
package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/klabast/wb-services/trace/internal/calendar"
	"github.com/klabast/wb-services/trace/internal/journal"
	"github.com/klabast/wb-services/trace/internal/store"
	"github.com/klabast/wb-services/trace/internal/summary"
)

// ─── Panels ──────────────────────────────────────────────────────────────────

type Panel int

const (
	PanelDay Panel = iota
	PanelWeek
)

// ─── Custom Messages ─────────────────────────────────────────────────────────

type monthLoadedMsg struct {
	year, month int
	days        []calendar.Day
	entryDates  []string
	err         error
}

type dayLoadedMsg struct {
	date   string
	entry  *journal.Entry
	weekly summary.Weekly
	err    error
}

// ─── Model ───────────────────────────────────────────────────────────────────

type Model struct {
	store       *store.Store
	cal         *calendar.Calendar
	mondayStart bool

	Width  int
	Height int
	Panel  Panel

	// Month grid
	Year       int
	Month      int
	Days       []calendar.Day
	EntryDates map[string]bool

	// Selection
	Selected string
	Entry    *journal.Entry
	Weekly   summary.Weekly

	ErrorMsg string
}

// New creates a TUI model with today selected
func New(s *store.Store, cal *calendar.Calendar, mondayStart bool) Model {
	now := cal.Now()
	return Model{
		store:       s,
		cal:         cal,
		mondayStart: mondayStart,
		Year:        now.Year(),
		Month:       int(now.Month()),
		Selected:    cal.Today(),
		EntryDates:  map[string]bool{},
	}
}

// Init loads the current month and today's entry
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadMonth(m.store, m.cal, m.Year, m.Month),
		loadDay(m.store, m.Selected, m.mondayStart),
		tea.EnterAltScreen,
	)
}

// ─── Commands (data loading) ─────────────────────────────────────────────────

func loadMonth(s *store.Store, cal *calendar.Calendar, year, month int) tea.Cmd {
	return func() tea.Msg {
		days, err := cal.Grid(year, month)
		if err != nil {
			return monthLoadedMsg{year: year, month: month, err: err}
		}
		dates, err := s.EntryDates(context.Background(), days[0].Date, days[len(days)-1].Date)
		return monthLoadedMsg{year: year, month: month, days: days, entryDates: dates, err: err}
	}
}

func loadDay(s *store.Store, date string, mondayStart bool) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		msg := dayLoadedMsg{date: date}

		entry, err := s.GetEntry(ctx, date)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			msg.err = err
			return msg
		default:
			msg.entry = entry
		}

		week, err := calendar.WeekRange(date, mondayStart)
		if err != nil {
			msg.err = err
			return msg
		}
		entries, err := s.ListEntries(ctx, store.ListOptions{From: week.WeekStart, To: week.WeekEnd})
		if err != nil {
			msg.err = err
			return msg
		}
		msg.weekly, msg.err = summary.Build(entries, week.WeekStart, week.WeekEnd)
		return msg
	}
}

// shiftDate moves date by days. The result is always a valid date.
func shiftDate(date string, days int) string {
	t, err := calendar.ParseDate(date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, days).Format(calendar.DateLayout)
}

func monthOf(date string) (int, int) {
	t, err := calendar.ParseDate(date)
	if err != nil {
		return 0, 0
	}
	return t.Year(), int(t.Month())
}

// firstOfMonth returns the first day of the month offset months away
func firstOfMonth(year, month, offset int) string {
	return time.Date(year, time.Month(month)+time.Month(offset), 1, 0, 0, 0, 0, time.UTC).Format(calendar.DateLayout)
}
