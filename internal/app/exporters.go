package app

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/klabast/wb-services/trace/internal/calendar"
	"github.com/klabast/wb-services/trace/internal/journal"
	"github.com/klabast/wb-services/trace/internal/store"
)

// ICSOptions controls the calendar export
type ICSOptions struct {
	// Name is shown as the calendar title
	Name string
	// ReminderTime (HH:MM) adds an alarm to every "tomorrow" event at
	// that time of its day. Empty means no alarms.
	ReminderTime string
	Now          time.Time
}

// BuildICS turns entries into an iCalendar document. Each entry becomes an
// all-day event; an entry's plan for tomorrow becomes an all-day event on
// the following day.
func BuildICS(entries []journal.Entry, opts ICSOptions) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ICSProductID)
	cal.SetCalscale("GREGORIAN")
	cal.SetXWRCalName(opts.Name)
	cal.SetXWRTimezone(ICSTimezone)

	for _, e := range entries {
		day, err := calendar.ParseDate(e.Date)
		if err != nil {
			continue
		}

		event := cal.AddEvent(fmt.Sprintf("%s-entry@%s", e.Date, ICSDomain))
		event.SetDtStampTime(opts.Now)
		event.SetAllDayStartAt(day)
		event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		event.SetSummary(entrySummary(e))
		event.SetDescription(entryDescription(e))

		if strings.TrimSpace(e.Tomorrow) == "" {
			continue
		}
		next := day.AddDate(0, 0, 1)
		plan := cal.AddEvent(fmt.Sprintf("%s-tomorrow@%s", e.Date, ICSDomain))
		plan.SetDtStampTime(opts.Now)
		plan.SetAllDayStartAt(next)
		plan.SetAllDayEndAt(next.AddDate(0, 0, 1))
		plan.SetSummary("내일 할 일: " + firstLine(e.Tomorrow))
		plan.SetDescription(e.Tomorrow)
		if trigger, ok := AlarmTrigger(opts.ReminderTime); ok {
			alarm := plan.AddAlarm()
			alarm.SetAction(ics.ActionDisplay)
			alarm.SetTrigger(trigger)
			alarm.SetProperty(ics.ComponentPropertyDescription, "알림: "+firstLine(e.Tomorrow))
		}
	}
	return cal
}

// AlarmTrigger converts an HH:MM time of day into a trigger relative to
// the start of an all-day event
func AlarmTrigger(alarmTime string) (string, bool) {
	parts := strings.Split(alarmTime, ":")
	if len(parts) != 2 {
		return "", false
	}

	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", false
	}
	return fmt.Sprintf("PT%dH%dM", hour, minute), true
}

func entrySummary(e journal.Entry) string {
	label := e.Mood.Value.Label()
	if len(e.Bullets) > 0 {
		return fmt.Sprintf("[%s] %s", label, e.Bullets[0])
	}
	return fmt.Sprintf("[%s] 기록", label)
}

func entryDescription(e journal.Entry) string {
	var lines []string
	if e.Mood.Note != "" {
		lines = append(lines, "기분: "+e.Mood.Value.Label()+" ("+e.Mood.Note+")")
	}
	for _, b := range e.Bullets {
		lines = append(lines, "- "+b)
	}
	if len(e.Events) > 0 {
		lines = append(lines, "이벤트: "+strings.Join(e.Events, ", "))
	}
	if names := personNames(e.People); names != "" {
		lines = append(lines, "사람: "+names)
	}
	return strings.Join(lines, "\n")
}

func personNames(people []journal.Person) string {
	names := make([]string, 0, len(people))
	for _, p := range people {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// GenerateICS writes entries as an .ics download
func GenerateICS(w http.ResponseWriter, r *http.Request, name string, entries []journal.Entry, now time.Time) {
	cal := BuildICS(entries, ICSOptions{
		Name:         "trace " + name,
		ReminderTime: r.URL.Query().Get("reminder"),
		Now:          now,
	})

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=trace_%s.ics", name))
	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		log.Printf("Error writing ICS export: %v", err)
	}
}

// csvHeader is the column order of the CSV export
var csvHeader = []string{"date", "mood", "mood_note", "bullets", "events", "people", "tomorrow"}

// WriteCSV writes entries as CSV rows, one per entry. List columns are
// joined with " | ".
func WriteCSV(w io.Writer, entries []journal.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{
			e.Date,
			string(e.Mood.Value),
			e.Mood.Note,
			strings.Join(e.Bullets, " | "),
			strings.Join(e.Events, " | "),
			strings.ReplaceAll(personNames(e.People), ", ", " | "),
			e.Tomorrow,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// GenerateCSV writes entries as a .csv download
func GenerateCSV(w http.ResponseWriter, name string, entries []journal.Entry) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=trace_%s.csv", name))
	if err := WriteCSV(w, entries); err != nil {
		log.Printf("Error writing CSV export: %v", err)
	}
}

// GenerateJSON writes a snapshot as a .json download
func GenerateJSON(w http.ResponseWriter, name string, data *store.ExportData) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=trace_%s.json", name))

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		log.Printf("Error encoding JSON export: %v", err)
		http.Error(w, ErrFailedToGenerate, http.StatusInternalServerError)
	}
}

// HandleExport handles export downloads in ICS, CSV or JSON format
// Query params: format, from, to
func (s *Server) HandleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, ok := optionalDate(w, q.Get("from"))
	if !ok {
		return
	}
	to, ok := optionalDate(w, q.Get("to"))
	if !ok {
		return
	}

	name := "all"
	if from != "" || to != "" {
		name = from + "_" + to
	}

	ctx := r.Context()
	switch format := q.Get("format"); format {
	case "ics", "csv":
		entries, err := s.repo.ListEntries(ctx, store.ListOptions{From: from, To: to})
		if err != nil {
			writeStoreError(w, err, ErrEntryNotFound)
			return
		}
		// exports read oldest first
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
		if format == "ics" {
			GenerateICS(w, r, name, entries, s.cal.Now())
		} else {
			GenerateCSV(w, name, entries)
		}
	case "json", "":
		data, err := s.repo.Export(ctx)
		if err != nil {
			writeStoreError(w, err, ErrEntryNotFound)
			return
		}
		data.Entries = filterEntries(data.Entries, from, to)
		GenerateJSON(w, name, data)
	default:
		http.Error(w, ErrInvalidFormat, http.StatusBadRequest)
	}
}

func filterEntries(entries []journal.Entry, from, to string) []journal.Entry {
	if from == "" && to == "" {
		return entries
	}
	out := []journal.Entry{}
	for _, e := range entries {
		if (from == "" || e.Date >= from) && (to == "" || e.Date <= to) {
			out = append(out, e)
		}
	}
	return out
}

// HandleImport merges a JSON snapshot into the journal. Existing dates,
// weeks and project IDs are kept.
func (s *Server) HandleImport(w http.ResponseWriter, r *http.Request) {
	var data store.ExportData
	r.Body = http.MaxBytesReader(w, r.Body, 64<<20)
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(w, ErrInvalidBody, http.StatusBadRequest)
		return
	}

	for _, e := range data.Entries {
		if err := e.Validate(); err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, journal.ErrInvalidMood) {
				status = http.StatusUnprocessableEntity
			}
			http.Error(w, fmt.Sprintf("entry %s: %v", e.Date, err), status)
			return
		}
	}
	for _, p := range data.Projects {
		if err := p.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	result, err := s.repo.Import(r.Context(), &data)
	if err != nil {
		writeStoreError(w, err, ErrEntryNotFound)
		return
	}
	s.cache.Clear()

	log.Printf("✅ Imported %d entries, %d weekly notes, %d projects",
		result.EntriesImported, result.WeeklyNotesImported, result.ProjectsImported)
	writeJSON(w, http.StatusOK, result)
}
