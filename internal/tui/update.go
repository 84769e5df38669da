package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ─── Update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKeyPress(msg.String())

	// ─── Data loaded messages ────────────────────────────────────────────
	case monthLoadedMsg:
		if msg.err != nil {
			m.ErrorMsg = msg.err.Error()
			return m, nil
		}
		// a late reply for a month we already left
		if msg.year != m.Year || msg.month != m.Month {
			return m, nil
		}
		m.Days = msg.days
		m.EntryDates = make(map[string]bool, len(msg.entryDates))
		for _, d := range msg.entryDates {
			m.EntryDates[d] = true
		}
		return m, nil

	case dayLoadedMsg:
		if msg.err != nil {
			m.ErrorMsg = msg.err.Error()
			return m, nil
		}
		if msg.date != m.Selected {
			return m, nil
		}
		m.Entry = msg.entry
		m.Weekly = msg.weekly
		return m, nil
	}

	return m, nil
}

// ─── Key Press Router ────────────────────────────────────────────────────────

func (m Model) handleKeyPress(key string) (tea.Model, tea.Cmd) {
	m.ErrorMsg = ""

	switch key {
	case "q", "esc":
		return m, tea.Quit
	case "left", "h":
		return m.selectDate(shiftDate(m.Selected, -1))
	case "right", "l":
		return m.selectDate(shiftDate(m.Selected, 1))
	case "up", "k":
		return m.selectDate(shiftDate(m.Selected, -7))
	case "down", "j":
		return m.selectDate(shiftDate(m.Selected, 7))
	case "n":
		return m.selectDate(firstOfMonth(m.Year, m.Month, 1))
	case "p":
		return m.selectDate(firstOfMonth(m.Year, m.Month, -1))
	case "t":
		return m.selectDate(m.cal.Today())
	case "w", "tab":
		if m.Panel == PanelDay {
			m.Panel = PanelWeek
		} else {
			m.Panel = PanelDay
		}
		return m, nil
	}
	return m, nil
}

// selectDate moves the selection and reloads the month when it changes
func (m Model) selectDate(date string) (tea.Model, tea.Cmd) {
	if date == m.Selected {
		return m, nil
	}
	m.Selected = date
	m.Entry = nil

	cmds := []tea.Cmd{loadDay(m.store, date, m.mondayStart)}
	if year, month := monthOf(date); year != m.Year || month != m.Month {
		m.Year, m.Month = year, month
		m.Days = nil
		m.EntryDates = map[string]bool{}
		cmds = append(cmds, loadMonth(m.store, m.cal, year, month))
	}
	return m, tea.Batch(cmds...)
}
