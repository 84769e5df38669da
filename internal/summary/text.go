package summary

import (
	"fmt"
	"strings"

	"github.com/klabast/wb-services/trace/internal/journal"
)

// Text renders w as a few plain lines for terminals and agents
func (w Weekly) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Week %s ~ %s: %d entries\n", w.WeekStart, w.WeekEnd, w.EntryCount)
	b.WriteString("Moods:")
	for _, m := range journal.Moods {
		fmt.Fprintf(&b, " %s %d", m, w.MoodCounts[m])
	}
	b.WriteString("\n")
	if len(w.TopPeople) > 0 {
		names := make([]string, 0, len(w.TopPeople))
		for _, p := range w.TopPeople {
			names = append(names, fmt.Sprintf("%s (%d)", p.Name, p.Count))
		}
		fmt.Fprintf(&b, "People: %s\n", strings.Join(names, ", "))
	}
	if len(w.Highlights) > 0 {
		fmt.Fprintf(&b, "Highlights: %s\n", strings.Join(w.Highlights, "; "))
	}
	if w.NextExperiment != "" {
		fmt.Fprintf(&b, "Next experiment: %s\n", w.NextExperiment)
	}
	return b.String()
}

// EntriesText lists entries one block per day
func EntriesText(entries []journal.Entry) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s %s", e.Date, e.Mood.Value.Label())
		if e.Mood.Note != "" {
			fmt.Fprintf(&b, " (%s)", e.Mood.Note)
		}
		b.WriteString("\n")
		for _, bullet := range e.Bullets {
			fmt.Fprintf(&b, "  - %s\n", bullet)
		}
		if len(e.Events) > 0 {
			fmt.Fprintf(&b, "  events: %s\n", strings.Join(e.Events, ", "))
		}
		if len(e.People) > 0 {
			names := make([]string, 0, len(e.People))
			for _, p := range e.People {
				names = append(names, p.Name)
			}
			fmt.Fprintf(&b, "  people: %s\n", strings.Join(names, ", "))
		}
		if e.Tomorrow != "" {
			fmt.Fprintf(&b, "  tomorrow: %s\n", e.Tomorrow)
		}
	}
	return b.String()
}
