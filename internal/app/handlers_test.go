package app

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/klabast/wb-services/trace/internal/ai"
	"github.com/klabast/wb-services/trace/internal/calendar"
	"github.com/klabast/wb-services/trace/internal/journal"
	"github.com/klabast/wb-services/trace/internal/store"
	"github.com/klabast/wb-services/trace/internal/summary"
)

// 2024-03-14 is a Thursday
var testNow = time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)

type fakeSummarizer struct {
	calls int
	err   error
}

func (f *fakeSummarizer) Summarize(_ context.Context, weekStart, weekEnd string, entries []journal.Entry, _ []journal.Project) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(entries) == 0 {
		return "", ai.ErrNoEntries
	}
	return "summary " + weekStart + ".." + weekEnd, nil
}

type fakeSearcher struct {
	calls int
}

func (f *fakeSearcher) Search(_ context.Context, query string, entries []journal.Entry, _ []journal.Project) (ai.SearchResult, error) {
	f.calls++
	var dates []string
	for _, e := range entries {
		if strings.Contains(strings.Join(e.Bullets, " "), query) {
			dates = append(dates, e.Date)
		}
	}
	return ai.SearchResult{Dates: dates, Explanation: "matched"}, nil
}

type testServer struct {
	*httptest.Server
	repo     *store.Store
	summary  *fakeSummarizer
	searcher *fakeSearcher
}

func newTestServer(t *testing.T, auth *Auth, withAI bool) *testServer {
	t.Helper()
	cfg := store.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Now = func() time.Time { return testNow }

	repo, err := store.New(cfg)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	ts := &testServer{repo: repo}
	opts := Options{
		Repo:        repo,
		Calendar:    calendar.New(calendar.FixedClock(testNow)),
		Auth:        auth,
		MondayStart: true,
	}
	if withAI {
		ts.summary = &fakeSummarizer{}
		ts.searcher = &fakeSearcher{}
		opts.Summarizer = ts.summary
		opts.Searcher = ts.searcher
	}

	ts.Server = httptest.NewServer(NewServer(opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string) (*http.Response, string) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return resp, string(raw)
}

func (ts *testServer) putEntry(t *testing.T, date, body string) {
	t.Helper()
	resp, text := ts.do(t, http.MethodPut, "/api/entries/"+date, body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT entry %s: status %d: %s", date, resp.StatusCode, text)
	}
}

func decode[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
	return v
}

func TestHealthAndConfig(t *testing.T) {
	ts := newTestServer(t, nil, false)

	resp, body := ts.do(t, http.MethodGet, "/api/health", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"ok"`) {
		t.Fatalf("health: %d %s", resp.StatusCode, body)
	}

	resp, body = ts.do(t, http.MethodGet, "/api/config", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("config: %d", resp.StatusCode)
	}
	cfg := decode[map[string]any](t, body)
	if cfg["today"] != "2024-03-14" {
		t.Errorf("Expected today 2024-03-14, got %v", cfg["today"])
	}
	if cfg["aiEnabled"] != false {
		t.Errorf("Expected AI disabled, got %v", cfg["aiEnabled"])
	}
	if week, ok := cfg["currentWeek"].(map[string]any); !ok || week["weekStart"] != "2024-03-11" {
		t.Errorf("Unexpected current week: %v", cfg["currentWeek"])
	}
	if names, ok := cfg["monthNames"].([]any); !ok || len(names) != 12 || names[2] != "3월" {
		t.Errorf("Unexpected month names: %v", cfg["monthNames"])
	}
}

func TestEntryLifecycle(t *testing.T) {
	ts := newTestServer(t, nil, false)

	// legacy string people are accepted
	ts.putEntry(t, "2024-03-12", `{"bullets":["shipped"],"mood":{"value":"great"},"people":["Alice",{"name":"Bob","mood":"good"}]}`)

	resp, body := ts.do(t, http.MethodGet, "/api/entries/2024-03-12", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get entry: %d %s", resp.StatusCode, body)
	}
	e := decode[journal.Entry](t, body)
	if e.ID == "" || e.Mood.Value != journal.MoodGreat || len(e.People) != 2 || e.People[0].Name != "Alice" {
		t.Errorf("Unexpected entry: %+v", e)
	}

	resp, _ = ts.do(t, http.MethodDelete, "/api/entries/2024-03-12", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: %d", resp.StatusCode)
	}
	resp, body = ts.do(t, http.MethodGet, "/api/entries/2024-03-12", "")
	if resp.StatusCode != http.StatusNotFound || body != ErrEntryNotFound+"\n" {
		t.Errorf("Expected 404 %q, got %d %q", ErrEntryNotFound, resp.StatusCode, body)
	}
	resp, _ = ts.do(t, http.MethodDelete, "/api/entries/2024-03-12", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 on second delete, got %d", resp.StatusCode)
	}
}

func TestPutEntryValidation(t *testing.T) {
	ts := newTestServer(t, nil, false)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{"invalid date in path", "/api/entries/2024-02-30", `{"mood":{"value":"good"}}`, http.StatusBadRequest},
		{"unknown mood", "/api/entries/2024-03-12", `{"mood":{"value":"ecstatic"}}`, http.StatusUnprocessableEntity},
		{"date mismatch", "/api/entries/2024-03-12", `{"date":"2024-03-13","mood":{"value":"good"}}`, http.StatusBadRequest},
		{"broken json", "/api/entries/2024-03-12", `{"mood":`, http.StatusBadRequest},
		{"empty person", "/api/entries/2024-03-12", `{"mood":{"value":"good"},"people":[{"name":" "}]}`, http.StatusBadRequest},
		{"too many bullets", "/api/entries/2024-03-12", `{"mood":{"value":"good"},"bullets":["1","2","3","4","5","6","7","8","9","10","11"]}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := ts.do(t, http.MethodPut, tt.path, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("Expected status %d, got %d (%s)", tt.wantStatus, resp.StatusCode, body)
			}
		})
	}
}

func TestListAndSearchEntries(t *testing.T) {
	ts := newTestServer(t, nil, false)
	ts.putEntry(t, "2024-03-10", `{"bullets":["retro"],"mood":{"value":"okay"}}`)
	ts.putEntry(t, "2024-03-12", `{"bullets":["billing launch"],"mood":{"value":"good"}}`)
	ts.putEntry(t, "2024-03-13", `{"bullets":["billing fixes"],"mood":{"value":"bad"}}`)

	_, body := ts.do(t, http.MethodGet, "/api/entries?from=2024-03-11&to=2024-03-17", "")
	entries := decode[[]journal.Entry](t, body)
	if len(entries) != 2 || entries[0].Date != "2024-03-13" {
		t.Errorf("Unexpected range listing: %+v", entries)
	}

	resp, _ := ts.do(t, http.MethodGet, "/api/entries?from=yesterday", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad from, got %d", resp.StatusCode)
	}

	_, body = ts.do(t, http.MethodGet, "/api/entries/search?q=billing&limit=1", "")
	found := decode[[]journal.Entry](t, body)
	if len(found) != 1 || found[0].Date != "2024-03-13" {
		t.Errorf("Unexpected search result: %+v", found)
	}

	resp, _ = ts.do(t, http.MethodGet, "/api/entries/search?q=billing&limit=-3", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad limit, got %d", resp.StatusCode)
	}
}

type weekBody struct {
	WeekStart    string               `json:"weekStart"`
	WeekEnd      string               `json:"weekEnd"`
	Dates        []string             `json:"dates"`
	PreviousWeek string               `json:"previousWeek"`
	NextWeek     string               `json:"nextWeek"`
	Entries      []journal.Entry      `json:"entries"`
	Summary      summary.Weekly       `json:"summary"`
	Notes        *journal.WeeklyNotes `json:"notes"`
}

func TestWeekView(t *testing.T) {
	ts := newTestServer(t, nil, false)
	ts.putEntry(t, "2024-03-11", `{"mood":{"value":"good"},"people":["Alice","Bob"]}`)
	ts.putEntry(t, "2024-03-12", `{"mood":{"value":"great"},"people":["Alice"]}`)
	ts.putEntry(t, "2024-03-18", `{"mood":{"value":"awful"}}`)

	resp, body := ts.do(t, http.MethodPut, "/api/weekly-notes/2024-03-11",
		`{"todos":[{"text":"plan"}],"highlights":["launch"],"nextExperiment":"walk"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put notes: %d %s", resp.StatusCode, body)
	}
	notes := decode[journal.WeeklyNotes](t, body)
	if notes.Todos[0].ID == "" {
		t.Error("Expected todo to get an ID")
	}

	resp, body = ts.do(t, http.MethodGet, "/api/weeks/2024-03-14", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("week: %d %s", resp.StatusCode, body)
	}
	week := decode[weekBody](t, body)
	if week.WeekStart != "2024-03-11" || week.WeekEnd != "2024-03-17" {
		t.Errorf("Unexpected range %s..%s", week.WeekStart, week.WeekEnd)
	}
	if len(week.Dates) != 7 || week.PreviousWeek != "2024-03-04" || week.NextWeek != "2024-03-18" {
		t.Errorf("Unexpected navigation: %+v", week)
	}
	if week.Summary.EntryCount != 2 || week.Summary.MoodCounts[journal.MoodGood] != 1 {
		t.Errorf("Unexpected summary: %+v", week.Summary)
	}
	if len(week.Summary.TopPeople) != 2 || week.Summary.TopPeople[0].Name != "Alice" || week.Summary.TopPeople[0].Count != 2 {
		t.Errorf("Unexpected top people: %+v", week.Summary.TopPeople)
	}
	if week.Summary.NextExperiment != "walk" || week.Notes == nil {
		t.Errorf("Expected notes merged into summary: %+v", week.Summary)
	}

	_, body = ts.do(t, http.MethodGet, "/api/weeks/2024-03-14?start=sunday", "")
	week = decode[weekBody](t, body)
	if week.WeekStart != "2024-03-10" || week.WeekEnd != "2024-03-16" || week.PreviousWeek != "2024-03-03" {
		t.Errorf("Unexpected sunday week: %+v", week)
	}
	if week.Notes != nil {
		t.Error("Notes are keyed by Monday and should not show in a Sunday week")
	}

	resp, _ = ts.do(t, http.MethodGet, "/api/weeks/not-a-date", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
	resp, _ = ts.do(t, http.MethodGet, "/api/weekly-notes/2024-03-04", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for missing notes, got %d", resp.StatusCode)
	}
}

func TestCalendarView(t *testing.T) {
	ts := newTestServer(t, nil, false)
	ts.putEntry(t, "2024-02-29", `{"mood":{"value":"good"}}`)
	ts.putEntry(t, "2024-03-01", `{"mood":{"value":"good"}}`)
	ts.putEntry(t, "2024-05-01", `{"mood":{"value":"good"}}`)

	resp, body := ts.do(t, http.MethodGet, "/api/calendar/2024/3", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("calendar: %d %s", resp.StatusCode, body)
	}
	view := decode[calendarResponse](t, body)
	if view.MonthName != "3월" || len(view.Days) != 42 {
		t.Errorf("Unexpected calendar header: %s, %d days", view.MonthName, len(view.Days))
	}
	if view.Days[0].Date != "2024-02-26" {
		t.Errorf("Expected grid to start on 2024-02-26, got %s", view.Days[0].Date)
	}
	// the leading cell from February still shows its entry
	if len(view.EntryDates) != 2 || view.EntryDates[0] != "2024-02-29" {
		t.Errorf("Unexpected entry dates: %v", view.EntryDates)
	}
	if view.Holidays["2024-03-01"] != "삼일절" {
		t.Errorf("Expected 삼일절 in March, got %v", view.Holidays)
	}
	today := 0
	for _, d := range view.Days {
		if d.IsToday {
			today++
			if d.Date != "2024-03-14" {
				t.Errorf("Unexpected today cell %s", d.Date)
			}
		}
	}
	if today != 1 {
		t.Errorf("Expected exactly one today cell, got %d", today)
	}

	resp, _ = ts.do(t, http.MethodGet, "/api/calendar/2024/13", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for month 13, got %d", resp.StatusCode)
	}
}

func TestProjectsAndPeople(t *testing.T) {
	ts := newTestServer(t, nil, false)

	resp, body := ts.do(t, http.MethodPost, "/api/projects", `{"crew":"Core","title":"Search","jiraLink":"https://jira.example.com/browse/CORE-12"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create project: %d %s", resp.StatusCode, body)
	}
	p := decode[journal.Project](t, body)

	resp, _ = ts.do(t, http.MethodPost, "/api/projects", `{"crew":"Core"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for project without title, got %d", resp.StatusCode)
	}

	resp, body = ts.do(t, http.MethodPatch, "/api/projects/"+p.ID, `{"status":"completed"}`)
	if resp.StatusCode != http.StatusOK || decode[journal.Project](t, body).Status != journal.ProjectCompleted {
		t.Errorf("patch project: %d %s", resp.StatusCode, body)
	}
	resp, _ = ts.do(t, http.MethodPatch, "/api/projects/"+p.ID, `{}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty patch, got %d", resp.StatusCode)
	}

	_, body = ts.do(t, http.MethodGet, "/api/projects?status=completed", "")
	list := decode[projectListResponse](t, body)
	if len(list.Projects) != 1 || len(list.Crews) != 1 || list.Crews[0] != "Core" {
		t.Errorf("Unexpected project list: %+v", list)
	}

	resp, _ = ts.do(t, http.MethodDelete, "/api/projects/"+p.ID, "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete project: %d", resp.StatusCode)
	}
	resp, _ = ts.do(t, http.MethodGet, "/api/projects/"+p.ID, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", resp.StatusCode)
	}

	ts.putEntry(t, "2024-03-11", `{"mood":{"value":"good"},"people":["Bob","Alice"]}`)
	ts.putEntry(t, "2024-03-12", `{"mood":{"value":"good"},"people":["Alice"]}`)
	resp, _ = ts.do(t, http.MethodPut, "/api/preferences", `{"darkMode":true,"avatarStyle":"bottts"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put preferences: %d", resp.StatusCode)
	}

	_, body = ts.do(t, http.MethodGet, "/api/people", "")
	people := decode[[]personResponse](t, body)
	if len(people) != 2 || people[0].Name != "Alice" || people[0].Count != 2 {
		t.Fatalf("Unexpected people: %+v", people)
	}
	if people[0].AvatarURL != journal.AvatarURL("Alice", journal.AvatarBottts) {
		t.Errorf("Expected avatar in the saved style, got %s", people[0].AvatarURL)
	}
}

func TestPreferences(t *testing.T) {
	ts := newTestServer(t, nil, false)

	_, body := ts.do(t, http.MethodGet, "/api/preferences", "")
	if got := decode[Preferences](t, body); got != DefaultPreferences() {
		t.Errorf("Expected defaults, got %+v", got)
	}

	resp, _ := ts.do(t, http.MethodPut, "/api/preferences", `{"darkMode":true,"avatarStyle":"crayons"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown style, got %d", resp.StatusCode)
	}

	resp, body = ts.do(t, http.MethodPut, "/api/preferences", `{"darkMode":true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put preferences: %d", resp.StatusCode)
	}
	want := Preferences{DarkMode: true, AvatarStyle: journal.DefaultAvatarStyle}
	if got := decode[Preferences](t, body); got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestAIRoutes(t *testing.T) {
	disabled := newTestServer(t, nil, false)
	resp, _ := disabled.do(t, http.MethodPost, "/api/ai/search", `{"query":"x"}`)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without AI, got %d", resp.StatusCode)
	}
	resp, _ = disabled.do(t, http.MethodPost, "/api/ai/summary", `{}`)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without AI, got %d", resp.StatusCode)
	}

	ts := newTestServer(t, nil, true)
	ts.putEntry(t, "2024-03-12", `{"bullets":["billing launch"],"mood":{"value":"good"}}`)

	_, body := ts.do(t, http.MethodPost, "/api/ai/search", `{"query":"billing"}`)
	first := decode[aiSearchResponse](t, body)
	if first.Cached || len(first.Dates) != 1 {
		t.Errorf("Unexpected first search: %+v", first)
	}
	_, body = ts.do(t, http.MethodPost, "/api/ai/search", `{"query":"billing"}`)
	if second := decode[aiSearchResponse](t, body); !second.Cached || ts.searcher.calls != 1 {
		t.Errorf("Expected cached second search, got %+v after %d calls", second, ts.searcher.calls)
	}

	// writing an entry drops the cache
	ts.putEntry(t, "2024-03-13", `{"bullets":["billing fixes"],"mood":{"value":"okay"}}`)
	_, body = ts.do(t, http.MethodPost, "/api/ai/search", `{"query":"billing"}`)
	if third := decode[aiSearchResponse](t, body); third.Cached || len(third.Dates) != 2 {
		t.Errorf("Expected fresh search after write, got %+v", third)
	}

	resp, body = ts.do(t, http.MethodPost, "/api/ai/summary", `{"date":"2024-03-14"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary: %d %s", resp.StatusCode, body)
	}
	sum := decode[aiSummaryResponse](t, body)
	if sum.Summary != "summary 2024-03-11..2024-03-17" || sum.EntriesCount != 2 {
		t.Errorf("Unexpected summary: %+v", sum)
	}

	resp, _ = ts.do(t, http.MethodPost, "/api/ai/summary", `{"date":"2024-01-01"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for a week without entries, got %d", resp.StatusCode)
	}

	ts.summary.err = errors.New("quota")
	resp, _ = ts.do(t, http.MethodPost, "/api/ai/summary", `{}`)
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected 502 on model failure, got %d", resp.StatusCode)
	}
}

func TestExportImportRoutes(t *testing.T) {
	src := newTestServer(t, nil, false)
	src.putEntry(t, "2024-03-11", `{"bullets":["a"],"mood":{"value":"good"},"tomorrow":"b"}`)
	src.putEntry(t, "2024-03-12", `{"bullets":["c"],"mood":{"value":"bad"}}`)

	resp, body := src.do(t, http.MethodGet, "/api/export?format=ics", "")
	if resp.StatusCode != http.StatusOK || strings.Count(body, "BEGIN:VEVENT") != 3 {
		t.Errorf("ics export: %d, %d events", resp.StatusCode, strings.Count(body, "BEGIN:VEVENT"))
	}

	resp, body = src.do(t, http.MethodGet, "/api/export?format=csv&from=2024-03-12", "")
	if resp.StatusCode != http.StatusOK || strings.Count(strings.TrimSpace(body), "\n") != 1 {
		t.Errorf("csv export: %d %q", resp.StatusCode, body)
	}

	resp, _ = src.do(t, http.MethodGet, "/api/export?format=xml", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown format, got %d", resp.StatusCode)
	}

	resp, snapshot := src.do(t, http.MethodGet, "/api/export?format=json", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("json export: %d", resp.StatusCode)
	}

	dst := newTestServer(t, nil, false)
	resp, body = dst.do(t, http.MethodPost, "/api/import", snapshot)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import: %d %s", resp.StatusCode, body)
	}
	if res := decode[store.ImportResult](t, body); res.EntriesImported != 2 {
		t.Errorf("Expected 2 imported entries, got %+v", res)
	}

	resp, _ = dst.do(t, http.MethodPost, "/api/import", `{"entries":[{"date":"2024-03-20","mood":{"value":"meh"}}]}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for invalid mood in import, got %d", resp.StatusCode)
	}
}

func TestImportLegacyPeople(t *testing.T) {
	ts := newTestServer(t, nil, false)

	resp, body := ts.do(t, http.MethodPost, "/api/import", `{"entries":[{"date":"2024-03-11","mood":{"value":"good"},"people":["Alice","Bob"]}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import: %d %s", resp.StatusCode, body)
	}
	if res := decode[store.ImportResult](t, body); res.EntriesImported != 1 {
		t.Errorf("Expected 1 imported entry, got %+v", res)
	}

	resp, body = ts.do(t, http.MethodGet, "/api/entries/2024-03-11", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get entry: %d %s", resp.StatusCode, body)
	}
	e := decode[journal.Entry](t, body)
	if e.ID == "" || len(e.People) != 2 || e.People[0].Name != "Alice" || e.People[1].Name != "Bob" {
		t.Errorf("Unexpected entry: %+v", e)
	}

	resp, _ = ts.do(t, http.MethodPost, "/api/import", `{"entries":[{"date":"2024-03-12","mood":{"value":"good"},"people":[7]}]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed people, got %d", resp.StatusCode)
	}
}

func TestWriteRoutesRequireAuth(t *testing.T) {
	hash, err := HashPassword("secret-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	ts := newTestServer(t, &Auth{User: "me", hash: []byte(hash)}, false)

	resp, _ := ts.do(t, http.MethodPut, "/api/entries/2024-03-12", `{"mood":{"value":"good"}}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 without credentials, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/entries/2024-03-12", strings.NewReader(`{"mood":{"value":"good"}}`))
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("me:secret-password")))
	authed, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("authed put: %v", err)
	}
	authed.Body.Close()
	if authed.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 with credentials, got %d", authed.StatusCode)
	}

	// reads stay open
	resp, _ = ts.do(t, http.MethodGet, "/api/entries/2024-03-12", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected open read, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil, false)
	ts.do(t, http.MethodGet, "/api/health", "")

	resp, body := ts.do(t, http.MethodGet, "/metrics", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics: %d", resp.StatusCode)
	}
	if !strings.Contains(body, `trace_http_requests_total{route="/api/health",status="200"} 1`) {
		t.Errorf("Expected health request counter in metrics output")
	}
}
