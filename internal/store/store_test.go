package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/klabast/wb-services/trace/internal/calendar"
	"github.com/klabast/wb-services/trace/internal/journal"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Now = func() time.Time { return time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC) }

	s, err := New(cfg)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func testEntry(date string, mood journal.MoodValue, people ...string) journal.Entry {
	e := journal.Entry{
		Date:    date,
		Bullets: []string{"wrote tests for " + date},
		Mood:    journal.Mood{Value: mood},
	}
	for _, p := range people {
		e.People = append(e.People, journal.Person{Name: p})
	}
	return e
}

func TestUpsertEntryCreatesThenUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.UpsertEntry(ctx, testEntry("2024-03-11", journal.MoodGood, "Alice"))
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if created.ID == "" || created.CreatedAt == 0 {
		t.Fatalf("expected id and createdAt, got %+v", created)
	}

	update := testEntry("2024-03-11", journal.MoodGreat, "Alice", "Bob")
	update.Mood.Note = "shipped"
	updated, err := s.UpsertEntry(ctx, update)
	if err != nil {
		t.Fatalf("update entry: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("expected update to keep id %s, got %s", created.ID, updated.ID)
	}
	if updated.CreatedAt != created.CreatedAt {
		t.Fatalf("expected createdAt to be kept")
	}

	got, err := s.GetEntry(ctx, "2024-03-11")
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if got.Mood.Value != journal.MoodGreat || got.Mood.Note != "shipped" {
		t.Fatalf("unexpected mood %+v", got.Mood)
	}
	if len(got.People) != 2 || got.People[1].Name != "Bob" {
		t.Fatalf("unexpected people %+v", got.People)
	}
}

func TestGetEntryMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetEntry(context.Background(), "2024-01-01")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListEntriesRangeNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, d := range []string{"2024-03-09", "2024-03-11", "2024-03-13", "2024-03-18"} {
		if _, err := s.UpsertEntry(ctx, testEntry(d, journal.MoodOkay)); err != nil {
			t.Fatalf("upsert %s: %v", d, err)
		}
	}

	entries, err := s.ListEntries(ctx, ListOptions{From: "2024-03-11", To: "2024-03-17"})
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Date != "2024-03-13" || entries[1].Date != "2024-03-11" {
		t.Fatalf("expected newest first, got %s, %s", entries[0].Date, entries[1].Date)
	}

	all, err := s.ListEntries(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(all))
	}

	dates, err := s.EntryDates(ctx, "2024-03-01", "2024-03-31")
	if err != nil {
		t.Fatalf("entry dates: %v", err)
	}
	if len(dates) != 4 || dates[0] != "2024-03-09" {
		t.Fatalf("unexpected dates %v", dates)
	}
}

func TestDeleteEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.UpsertEntry(ctx, testEntry("2024-03-11", journal.MoodBad)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.DeleteEntry(ctx, "2024-03-11"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteEntry(ctx, "2024-03-11"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestLegacyPeopleRowsAreNormalized(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.db.Exec(`INSERT INTO entries (`+entryColumns+`)
		VALUES ('legacy-1', '2023-12-01', 'good', '', '[]', '[]', '["Alice", {"name":"Bob","feeling":"tired"}]', '', '[]', 1, 1)`)
	if err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}

	e, err := s.GetEntry(ctx, "2023-12-01")
	if err != nil {
		t.Fatalf("get legacy entry: %v", err)
	}
	if len(e.People) != 2 {
		t.Fatalf("expected 2 people, got %+v", e.People)
	}
	if e.People[0].Name != "Alice" || e.People[1].Feeling != "tired" {
		t.Fatalf("unexpected normalized people %+v", e.People)
	}
}

func TestSearchEntries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := testEntry("2024-03-11", journal.MoodGood, "Alice")
	a.Bullets = []string{"Deployed the billing service"}
	b := testEntry("2024-03-12", journal.MoodGood, "Bob")
	b.Bullets = []string{"Reviewed billing_v2 design"}
	c := testEntry("2024-03-13", journal.MoodGood)
	c.Tomorrow = "100% focus on docs"
	for _, e := range []journal.Entry{a, b, c} {
		if _, err := s.UpsertEntry(ctx, e); err != nil {
			t.Fatalf("upsert %s: %v", e.Date, err)
		}
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"billing", []string{"2024-03-12", "2024-03-11"}},
		{"BILLING alice", []string{"2024-03-11"}},
		{"billing_v2", []string{"2024-03-12"}},
		{"100%", []string{"2024-03-13"}},
		{"nothing-matches", nil},
		{"   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := s.SearchEntries(ctx, tt.query, 0)
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d results, got %d", len(tt.want), len(got))
			}
			for i, d := range tt.want {
				if got[i].Date != d {
					t.Errorf("result %d: expected %s, got %s", i, d, got[i].Date)
				}
			}
		})
	}
}

func TestWeeklyNotes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetWeeklyNotes(ctx, "2024-03-11"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	notes := journal.WeeklyNotes{
		Todos:          []journal.WeeklyTodo{{ID: "t1", Text: "plan sprint"}},
		Highlights:     []string{"launch"},
		NextExperiment: "no meetings on friday",
	}
	if err := s.SetWeeklyNotes(ctx, "2024-03-11", notes); err != nil {
		t.Fatalf("set notes: %v", err)
	}
	notes.Todos[0].Completed = true
	if err := s.SetWeeklyNotes(ctx, "2024-03-11", notes); err != nil {
		t.Fatalf("replace notes: %v", err)
	}

	got, err := s.GetWeeklyNotes(ctx, "2024-03-11")
	if err != nil {
		t.Fatalf("get notes: %v", err)
	}
	if !got.Todos[0].Completed || got.NextExperiment != "no meetings on friday" {
		t.Fatalf("unexpected notes %+v", got)
	}

	all, err := s.AllWeeklyNotes(ctx)
	if err != nil {
		t.Fatalf("all notes: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one week, got %d", len(all))
	}
}

func TestProjectsLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.CreateProject(ctx, journal.Project{Crew: " Platform ", Title: "Billing", JiraLink: "https://jira.example.com/browse/PLT-7"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if p.ID == "" || p.Status != journal.ProjectActive || p.Crew != "Platform" {
		t.Fatalf("unexpected project %+v", p)
	}

	if _, err := s.CreateProject(ctx, journal.Project{Crew: "Platform"}); !errors.Is(err, journal.ErrInvalidProject) {
		t.Fatalf("expected ErrInvalidProject, got %v", err)
	}

	paused := journal.ProjectPaused
	title := "Billing v2"
	updated, err := s.UpdateProject(ctx, p.ID, ProjectPatch{Status: &paused, Title: &title})
	if err != nil {
		t.Fatalf("update project: %v", err)
	}
	if updated.Title != "Billing v2" || updated.JiraTicket() != "PLT-7" {
		t.Fatalf("unexpected update %+v", updated)
	}

	active, err := s.ListProjects(ctx, journal.ProjectActive)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active projects, got %d", len(active))
	}
	all, err := s.ListProjects(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 1 || all[0].Status != journal.ProjectPaused {
		t.Fatalf("unexpected projects %+v", all)
	}

	if _, err := s.UpdateProject(ctx, "missing", ProjectPatch{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if _, err := s.GetProject(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPreferences(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.LoadPreference(ctx, "ui"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.SavePreference(ctx, "ui", `{"darkMode":true}`); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SavePreference(ctx, "ui", `{"darkMode":false}`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, err := s.LoadPreference(ctx, "ui")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if v != `{"darkMode":false}` {
		t.Fatalf("unexpected value %q", v)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newTestStore(t)
	ctx := context.Background()

	for _, e := range []journal.Entry{
		testEntry("2024-03-12", journal.MoodGood, "Alice"),
		testEntry("2024-03-11", journal.MoodAwful),
	} {
		if _, err := src.UpsertEntry(ctx, e); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	if err := src.SetWeeklyNotes(ctx, "2024-03-11", journal.WeeklyNotes{Highlights: []string{"demo"}}); err != nil {
		t.Fatalf("notes: %v", err)
	}
	if _, err := src.CreateProject(ctx, journal.Project{Crew: "Core", Title: "Search"}); err != nil {
		t.Fatalf("project: %v", err)
	}

	data, err := src.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if data.Entries[0].Date != "2024-03-11" {
		t.Fatalf("expected oldest entry first, got %s", data.Entries[0].Date)
	}

	path := filepath.Join(t.TempDir(), "trace.json")
	if err := WriteSnapshot(path, data); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	loaded, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}

	dst := newTestStore(t)
	res, err := dst.Import(ctx, loaded)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.EntriesImported != 2 || res.WeeklyNotesImported != 1 || res.ProjectsImported != 1 {
		t.Fatalf("unexpected import result %+v", res)
	}

	again, err := dst.Import(ctx, loaded)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if again.EntriesImported != 0 || again.WeeklyNotesImported != 0 || again.ProjectsImported != 0 {
		t.Fatalf("expected second import to skip everything, got %+v", again)
	}

	e, err := dst.GetEntry(ctx, "2024-03-12")
	if err != nil {
		t.Fatalf("get imported entry: %v", err)
	}
	if e.People[0].Name != "Alice" {
		t.Fatalf("unexpected imported people %+v", e.People)
	}
}

func TestImportRejectsInvalidEntry(t *testing.T) {
	s := newTestStore(t)
	data := &ExportData{Entries: []journal.Entry{testEntry("2024-03-11", "ecstatic")}}

	_, err := s.Import(context.Background(), data)
	if !errors.Is(err, journal.ErrInvalidMood) {
		t.Fatalf("expected ErrInvalidMood, got %v", err)
	}

	all, err := s.ListEntries(context.Background(), ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected failed import to leave the store empty")
	}
}

func TestImportAssignsIDsAndChecksWeekKeys(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	res, err := s.Import(ctx, &ExportData{Entries: []journal.Entry{testEntry("2024-03-11", journal.MoodGood)}})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.EntriesImported != 1 {
		t.Fatalf("expected 1 imported entry, got %+v", res)
	}
	got, err := s.GetEntry(ctx, "2024-03-11")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := uuid.Parse(got.ID); err != nil {
		t.Fatalf("expected a uuid ID, got %q", got.ID)
	}

	_, err = s.Import(ctx, &ExportData{
		Entries:     []journal.Entry{testEntry("2024-03-12", journal.MoodOkay)},
		WeeklyNotes: []WeeklyNotesRecord{{WeekStart: "week-11", Notes: journal.WeeklyNotes{Highlights: []string{"x"}}}},
	})
	if !errors.Is(err, calendar.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if _, err := s.GetEntry(ctx, "2024-03-12"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected failed import to roll back, got %v", err)
	}
	all, err := s.AllWeeklyNotes(ctx)
	if err != nil {
		t.Fatalf("notes: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected no weekly notes, got %v", all)
	}
}

func TestReadSnapshotLegacyPeople(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	raw := `{"version":"1","entries":[{"date":"2024-03-11","mood":{"value":"good"},"people":["Alice","Bob"]}]}`
	if err := os.WriteFile(path, []byte(raw), FilePermissions); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	people := data.Entries[0].People
	if len(people) != 2 || people[0].Name != "Alice" || people[1].Name != "Bob" {
		t.Fatalf("unexpected people: %+v", people)
	}
}

func TestWriteSnapshotKeepsBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.json")

	if err := WriteSnapshot(path, &ExportData{Version: "old"}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteSnapshot(path, &ExportData{Version: "new"}); err != nil {
		t.Fatalf("second write: %v", err)
	}

	current, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read current: %v", err)
	}
	backup, err := ReadSnapshot(path + BackupSuffix)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if current.Version != "new" || backup.Version != "old" {
		t.Fatalf("unexpected versions current=%s backup=%s", current.Version, backup.Version)
	}
	if _, err := os.Stat(path + TmpSuffix); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be gone, got %v", err)
	}
}
