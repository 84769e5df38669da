package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/klabast/wb-services/trace/internal/calendar"
	"github.com/klabast/wb-services/trace/internal/journal"
)

var weekdayNames = []string{"월", "화", "수", "목", "금", "토", "일"}

// ─── View (main router) ─────────────────────────────────────────────────────

func (m Model) View() string {
	left := m.viewMonth()

	var right string
	switch m.Panel {
	case PanelWeek:
		right = m.viewWeek()
	default:
		right = m.viewDay()
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, panelStyle.Render(right))

	var b strings.Builder
	b.WriteString(body)
	if m.ErrorMsg != "" {
		b.WriteString("\n" + errorStyle.Render("❌ "+m.ErrorMsg))
	}
	b.WriteString("\n" + helpStyle.Render("←↓↑→/hjkl move • n/p month • t today • w week • q quit"))

	return appStyle.Render(b.String())
}

// ─── Month Grid ──────────────────────────────────────────────────────────────

func (m Model) viewMonth() string {
	var b strings.Builder

	name, _ := calendar.MonthName(m.Month)
	b.WriteString(headerStyle.Render(fmt.Sprintf("%d년 %s", m.Year, name)))
	b.WriteString("\n")

	for _, wd := range weekdayNames {
		b.WriteString(weekdayStyle.Render(wd))
	}
	b.WriteString("\n")

	if len(m.Days) == 0 {
		b.WriteString(labelStyle.Render("불러오는 중..."))
		return b.String()
	}

	for i, d := range m.Days {
		b.WriteString(m.renderDay(d))
		if i%7 == 6 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderDay(d calendar.Day) string {
	label := fmt.Sprintf("%d", d.DayOfMonth)
	if m.EntryDates[d.Date] {
		label += "•"
	}

	switch {
	case d.Date == m.Selected:
		return selectedStyle.Render(label)
	case !d.IsCurrentMonth:
		return outsideDayStyle.Render(label)
	case d.IsToday:
		return todayStyle.Render(label)
	case m.EntryDates[d.Date]:
		return entryDayStyle.Render(label)
	default:
		return dayStyle.Render(label)
	}
}

// ─── Side Panels ─────────────────────────────────────────────────────────────

func (m Model) viewDay() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.Selected))
	b.WriteString("\n\n")

	e := m.Entry
	if e == nil {
		b.WriteString(labelStyle.Render("기록 없음"))
		return b.String()
	}

	mood := moodStyle(e.Mood.Value).Render(e.Mood.Value.Label())
	if e.Mood.Note != "" {
		mood += " " + labelStyle.Render(e.Mood.Note)
	}
	b.WriteString(mood + "\n")

	if len(e.Bullets) > 0 {
		b.WriteString("\n")
		for _, bullet := range e.Bullets {
			b.WriteString("• " + bullet + "\n")
		}
	}
	if len(e.Events) > 0 {
		b.WriteString("\n" + labelStyle.Render("이벤트 ") + strings.Join(e.Events, ", ") + "\n")
	}
	if len(e.People) > 0 {
		b.WriteString("\n" + labelStyle.Render("사람 ") + strings.Join(personNames(e.People), ", ") + "\n")
	}
	if e.Tomorrow != "" {
		b.WriteString("\n" + labelStyle.Render("내일 ") + e.Tomorrow + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) viewWeek() string {
	w := m.Weekly
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s ~ %s", w.WeekStart, w.WeekEnd)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %d\n\n", labelStyle.Render("기록"), w.EntryCount)

	for _, mood := range journal.Moods {
		count := w.MoodCounts[mood]
		bar := strings.Repeat("█", count)
		fmt.Fprintf(&b, "%-4s %s %d\n", mood.Label(), moodStyle(mood).Render(bar), count)
	}

	if len(w.TopPeople) > 0 {
		b.WriteString("\n" + labelStyle.Render("자주 만난 사람") + "\n")
		for _, p := range w.TopPeople {
			fmt.Fprintf(&b, "  %s (%d)\n", p.Name, p.Count)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func personNames(people []journal.Person) []string {
	names := make([]string, 0, len(people))
	for _, p := range people {
		names = append(names, p.Name)
	}
	return names
}
