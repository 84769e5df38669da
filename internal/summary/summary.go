// Package summary aggregates a week's entries into mood and people tallies.
package summary

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/klabast/wb-services/trace/internal/journal"
)

// TopPeopleLimit caps Weekly.TopPeople
const TopPeopleLimit = 5

// MoodCounts tallies entries per mood. All canonical moods are present.
type MoodCounts map[journal.MoodValue]int

// NewMoodCounts returns counts with every mood at zero
func NewMoodCounts() MoodCounts {
	counts := make(MoodCounts, len(journal.Moods))
	for _, m := range journal.Moods {
		counts[m] = 0
	}
	return counts
}

// MarshalJSON always writes the five canonical keys
func (c MoodCounts) MarshalJSON() ([]byte, error) {
	out := make(map[string]int, len(journal.Moods))
	for _, m := range journal.Moods {
		out[string(m)] = c[m]
	}
	return json.Marshal(out)
}

// PersonCount is how many times a person is mentioned in the week's
// entries. A name listed twice in one entry counts twice.
type PersonCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Weekly is the aggregate of one week
type Weekly struct {
	WeekStart      string        `json:"weekStart"`
	WeekEnd        string        `json:"weekEnd"`
	EntryCount     int           `json:"entryCount"`
	MoodCounts     MoodCounts    `json:"moodCounts"`
	TopPeople      []PersonCount `json:"topPeople"`
	Highlights     []string      `json:"highlights,omitempty"`
	NextExperiment string        `json:"nextExperiment,omitempty"`
}

// Build aggregates entries into a Weekly for weekStart..weekEnd.
//
// Entries are not filtered by date; the caller passes the week's entries.
// People with equal counts keep the order in which they first appear.
// An entry with a mood outside journal.Moods fails the whole call.
func Build(entries []journal.Entry, weekStart, weekEnd string) (Weekly, error) {
	moods := NewMoodCounts()
	for _, e := range entries {
		if !e.Mood.Value.Valid() {
			return Weekly{}, fmt.Errorf("entry %s: %w", e.Date, &journal.InvalidMoodError{Value: string(e.Mood.Value)})
		}
		moods[e.Mood.Value]++
	}

	top := CountPeople(entries)
	if len(top) > TopPeopleLimit {
		top = top[:TopPeopleLimit]
	}

	return Weekly{
		WeekStart:  weekStart,
		WeekEnd:    weekEnd,
		EntryCount: len(entries),
		MoodCounts: moods,
		TopPeople:  top,
	}, nil
}

// CountPeople ranks every person mentioned in entries by the number of
// mentions, most first. Equal counts keep first-appearance order.
func CountPeople(entries []journal.Entry) []PersonCount {
	counts := make(map[string]int)
	var order []string
	for _, e := range entries {
		for _, p := range e.People {
			if _, seen := counts[p.Name]; !seen {
				order = append(order, p.Name)
			}
			counts[p.Name]++
		}
	}

	ranked := make([]PersonCount, 0, len(order))
	for _, name := range order {
		ranked = append(ranked, PersonCount{Name: name, Count: counts[name]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	return ranked
}

// WithNotes returns a copy of w carrying the week's highlights and next
// experiment. w itself is left untouched.
func (w Weekly) WithNotes(notes journal.WeeklyNotes) Weekly {
	out := w
	out.MoodCounts = make(MoodCounts, len(w.MoodCounts))
	for k, v := range w.MoodCounts {
		out.MoodCounts[k] = v
	}
	out.TopPeople = append([]PersonCount(nil), w.TopPeople...)
	if out.TopPeople == nil {
		out.TopPeople = []PersonCount{}
	}
	if len(notes.Highlights) > 0 {
		out.Highlights = append([]string(nil), notes.Highlights...)
	}
	out.NextExperiment = notes.NextExperiment
	return out
}

// DominantMood returns the most frequent mood, earlier moods winning ties.
// ok is false when no entry was counted.
func (w Weekly) DominantMood() (journal.MoodValue, bool) {
	var best journal.MoodValue
	max := 0
	for _, m := range journal.Moods {
		if w.MoodCounts[m] > max {
			best, max = m, w.MoodCounts[m]
		}
	}
	return best, max > 0
}
