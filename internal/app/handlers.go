package app

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/klabast/wb-services/trace/internal/calendar"
	"github.com/klabast/wb-services/trace/internal/journal"
	"github.com/klabast/wb-services/trace/internal/store"
	"github.com/klabast/wb-services/trace/internal/summary"
)

// HandleHealth reports whether the database answers
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		log.Printf("❌ Health check failed: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "error": ErrStorageUnavailable})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type moodOption struct {
	Value journal.MoodValue `json:"value"`
	Label string            `json:"label"`
}

// HandleConfig returns the static data the UI needs on startup
func (s *Server) HandleConfig(w http.ResponseWriter, r *http.Request) {
	moods := make([]moodOption, 0, len(journal.Moods))
	for _, m := range journal.Moods {
		moods = append(moods, moodOption{Value: m, Label: m.Label()})
	}

	today := s.cal.Today()
	year, _ := strconv.Atoi(today[:4])

	weekStart := WeekStartMonday
	if !s.mondayStart {
		weekStart = WeekStartSunday
	}

	config := map[string]any{
		"moods":          moods,
		"monthNames":     calendar.MonthNames(),
		"today":          today,
		"currentWeek":    s.cal.CurrentWeek(s.mondayStart),
		"weekStart":      weekStart,
		"aiEnabled":      s.AIEnabled(),
		"avatarStyles":   journal.AvatarStyles,
		"maxBullets":     journal.MaxBullets,
		"writeProtected": s.auth.Enabled(),
		"holidays":       GetHolidays(year),
	}
	writeJSON(w, http.StatusOK, config)
}

// HandleListEntries lists entries, newest first. Query params: from, to.
func (s *Server) HandleListEntries(w http.ResponseWriter, r *http.Request) {
	from, ok := optionalDate(w, r.URL.Query().Get("from"))
	if !ok {
		return
	}
	to, ok := optionalDate(w, r.URL.Query().Get("to"))
	if !ok {
		return
	}

	entries, err := s.repo.ListEntries(r.Context(), store.ListOptions{From: from, To: to})
	if err != nil {
		writeStoreError(w, err, ErrEntryNotFound)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleGetEntry returns the entry of one date
// URL: /api/entries/{date}
func (s *Server) HandleGetEntry(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, mux.Vars(r)["date"])
	if !ok {
		return
	}
	entry, err := s.repo.GetEntry(r.Context(), date)
	if err != nil {
		writeStoreError(w, err, ErrEntryNotFound)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// entryRequest is the body of PUT /api/entries/{date}. People may be bare
// names or objects.
type entryRequest struct {
	Date      string             `json:"date"`
	Bullets   []string           `json:"bullets"`
	Events    []string           `json:"events"`
	Mood      journal.Mood       `json:"mood"`
	People    json.RawMessage    `json:"people"`
	Tomorrow  string             `json:"tomorrow"`
	WorkItems []journal.WorkItem `json:"workItems"`
}

// HandlePutEntry creates or replaces the entry of one date
func (s *Server) HandlePutEntry(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, mux.Vars(r)["date"])
	if !ok {
		return
	}

	var req entryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Date != "" && req.Date != date {
		http.Error(w, ErrDateMismatch, http.StatusBadRequest)
		return
	}

	people, err := journal.NormalizeLegacyPeople(req.People)
	if err != nil {
		http.Error(w, ErrInvalidBody, http.StatusBadRequest)
		return
	}

	entry := journal.Entry{
		Date:      date,
		Bullets:   req.Bullets,
		Events:    req.Events,
		Mood:      req.Mood,
		People:    people,
		Tomorrow:  req.Tomorrow,
		WorkItems: req.WorkItems,
	}
	if err := entry.Validate(); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, journal.ErrInvalidMood) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), status)
		return
	}

	saved, err := s.repo.UpsertEntry(r.Context(), entry)
	if err != nil {
		log.Printf("❌ Error saving entry %s: %v", date, err)
		http.Error(w, ErrFailedToSave, http.StatusInternalServerError)
		return
	}
	s.cache.Clear()

	writeJSON(w, http.StatusOK, saved)
}

// HandleDeleteEntry removes the entry of one date
func (s *Server) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, mux.Vars(r)["date"])
	if !ok {
		return
	}
	if err := s.repo.DeleteEntry(r.Context(), date); err != nil {
		writeStoreError(w, err, ErrEntryNotFound)
		return
	}
	s.cache.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleSearchEntries runs a keyword search. Query params: q, limit.
func (s *Server) HandleSearchEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, err := intParam(r.URL.Query().Get("limit"), DefaultSearchLimit)
	if err != nil {
		http.Error(w, "Invalid limit", http.StatusBadRequest)
		return
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	entries, err := s.repo.SearchEntries(r.Context(), q, limit)
	if err != nil {
		writeStoreError(w, err, ErrEntryNotFound)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// weekResponse is the week view around one date
type weekResponse struct {
	calendar.Range
	Dates        []string             `json:"dates"`
	PreviousWeek string               `json:"previousWeek"`
	NextWeek     string               `json:"nextWeek"`
	Entries      []journal.Entry      `json:"entries"`
	Summary      summary.Weekly       `json:"summary"`
	Notes        *journal.WeeklyNotes `json:"notes"`
}

// HandleWeek returns the week containing a date with its entries, notes
// and summary
// URL: /api/weeks/{date}?start=sunday
func (s *Server) HandleWeek(w http.ResponseWriter, r *http.Request) {
	date, err := calendar.FormatDate(mux.Vars(r)["date"])
	if err != nil {
		http.Error(w, ErrInvalidDateFormat, http.StatusBadRequest)
		return
	}

	mondayStart := s.mondayStart
	switch r.URL.Query().Get("start") {
	case WeekStartSunday:
		mondayStart = false
	case WeekStartMonday:
		mondayStart = true
	case "":
	default:
		http.Error(w, ErrInvalidFormat, http.StatusBadRequest)
		return
	}

	resp, err := s.buildWeek(r, date, mondayStart)
	if err != nil {
		writeStoreError(w, err, ErrEntryNotFound)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) buildWeek(r *http.Request, date string, mondayStart bool) (*weekResponse, error) {
	ctx := r.Context()
	week, err := calendar.WeekRange(date, mondayStart)
	if err != nil {
		return nil, err
	}
	dates, err := calendar.DatesInRange(week.WeekStart, week.WeekEnd)
	if err != nil {
		return nil, err
	}
	prev, next, err := adjacentWeeks(week, mondayStart)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.ListEntries(ctx, store.ListOptions{From: week.WeekStart, To: week.WeekEnd})
	if err != nil {
		return nil, err
	}
	weekly, err := summary.Build(entries, week.WeekStart, week.WeekEnd)
	if err != nil {
		return nil, err
	}

	notes, err := s.repo.GetWeeklyNotes(ctx, week.WeekStart)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return nil, err
	default:
		weekly = weekly.WithNotes(*notes)
	}

	return &weekResponse{
		Range:        week,
		Dates:        dates,
		PreviousWeek: prev,
		NextWeek:     next,
		Entries:      entries,
		Summary:      weekly,
		Notes:        notes,
	}, nil
}

// adjacentWeeks returns the start dates of the weeks before and after
// week. Sunday-start weeks step by seven days without Monday
// normalization.
func adjacentWeeks(week calendar.Range, mondayStart bool) (string, string, error) {
	if mondayStart {
		prev, err := calendar.PreviousWeek(week.WeekStart)
		if err != nil {
			return "", "", err
		}
		next, err := calendar.NextWeek(week.WeekStart)
		if err != nil {
			return "", "", err
		}
		return prev, next, nil
	}

	start, err := calendar.ParseDate(week.WeekStart)
	if err != nil {
		return "", "", err
	}
	return start.AddDate(0, 0, -7).Format(calendar.DateLayout), start.AddDate(0, 0, 7).Format(calendar.DateLayout), nil
}

// HandleGetWeeklyNotes returns the notes of a week
// URL: /api/weekly-notes/{weekStart}
func (s *Server) HandleGetWeeklyNotes(w http.ResponseWriter, r *http.Request) {
	weekStart, ok := dateParam(w, mux.Vars(r)["weekStart"])
	if !ok {
		return
	}
	notes, err := s.repo.GetWeeklyNotes(r.Context(), weekStart)
	if err != nil {
		writeStoreError(w, err, ErrNotesNotFound)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// HandlePutWeeklyNotes replaces the notes of a week. Todos without an ID
// get one.
func (s *Server) HandlePutWeeklyNotes(w http.ResponseWriter, r *http.Request) {
	weekStart, ok := dateParam(w, mux.Vars(r)["weekStart"])
	if !ok {
		return
	}
	var notes journal.WeeklyNotes
	if !decodeJSON(w, r, &notes) {
		return
	}
	for i := range notes.Todos {
		if notes.Todos[i].ID == "" {
			notes.Todos[i].ID = uuid.NewString()
		}
	}

	if err := s.repo.SetWeeklyNotes(r.Context(), weekStart, notes); err != nil {
		writeStoreError(w, err, ErrNotesNotFound)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// calendarResponse is one month view
type calendarResponse struct {
	Year       int               `json:"year"`
	Month      int               `json:"month"`
	MonthName  string            `json:"monthName"`
	Days       []calendar.Day    `json:"days"`
	EntryDates []string          `json:"entryDates"`
	Holidays   map[string]string `json:"holidays"`
}

// HandleCalendar returns the 42-day grid of a month and the dates in it
// that have entries
// URL: /api/calendar/{year}/{month}
func (s *Server) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	year, err := strconv.Atoi(vars["year"])
	if err != nil || year < 1 || year > 9999 {
		http.Error(w, ErrInvalidYear, http.StatusBadRequest)
		return
	}
	month, err := strconv.Atoi(vars["month"])
	if err != nil {
		http.Error(w, ErrInvalidMonth, http.StatusBadRequest)
		return
	}

	days, err := s.cal.Grid(year, month)
	if err != nil {
		http.Error(w, ErrInvalidMonth, http.StatusBadRequest)
		return
	}
	name, _ := calendar.MonthName(month)

	first, last := days[0].Date, days[len(days)-1].Date
	dates, err := s.repo.EntryDates(r.Context(), first, last)
	if err != nil {
		writeStoreError(w, err, ErrEntryNotFound)
		return
	}

	writeJSON(w, http.StatusOK, calendarResponse{
		Year:       year,
		Month:      month,
		MonthName:  name,
		Days:       days,
		EntryDates: dates,
		Holidays:   holidaysBetween(first, last),
	})
}

// personResponse is one row of the people list
type personResponse struct {
	summary.PersonCount
	AvatarURL string `json:"avatarUrl"`
}

// HandlePeople ranks everyone mentioned in a range. Query params: from, to.
func (s *Server) HandlePeople(w http.ResponseWriter, r *http.Request) {
	from, ok := optionalDate(w, r.URL.Query().Get("from"))
	if !ok {
		return
	}
	to, ok := optionalDate(w, r.URL.Query().Get("to"))
	if !ok {
		return
	}

	entries, err := s.repo.ListEntries(r.Context(), store.ListOptions{From: from, To: to})
	if err != nil {
		writeStoreError(w, err, ErrEntryNotFound)
		return
	}
	prefs, err := LoadPreferences(r.Context(), s.repo)
	if err != nil {
		writeStoreError(w, err, ErrInternalServer)
		return
	}

	ranked := summary.CountPeople(entries)
	people := make([]personResponse, 0, len(ranked))
	for _, p := range ranked {
		people = append(people, personResponse{
			PersonCount: p,
			AvatarURL:   journal.AvatarURL(p.Name, prefs.AvatarStyle),
		})
	}
	writeJSON(w, http.StatusOK, people)
}
