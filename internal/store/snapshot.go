package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/klabast/wb-services/trace/internal/calendar"
	"github.com/klabast/wb-services/trace/internal/journal"
)

// Snapshot file constants
const (
	SnapshotVersion = "1"
	BackupSuffix    = ".backup"
	TmpSuffix       = ".tmp.json"
	FilePermissions = 0644
)

// WeeklyNotesRecord is one week of notes in a snapshot
type WeeklyNotesRecord struct {
	WeekStart string              `json:"weekStart"`
	Notes     journal.WeeklyNotes `json:"notes"`
}

// ExportData is the full serializable dump of the journal
type ExportData struct {
	Version     string              `json:"version"`
	ExportedAt  string              `json:"exportedAt"`
	Entries     []journal.Entry     `json:"entries"`
	WeeklyNotes []WeeklyNotesRecord `json:"weeklyNotes"`
	Projects    []journal.Project   `json:"projects"`
}

// ImportResult counts the rows an import added
type ImportResult struct {
	EntriesImported     int `json:"entriesImported"`
	WeeklyNotesImported int `json:"weeklyNotesImported"`
	ProjectsImported    int `json:"projectsImported"`
}

// Export collects every row into an ExportData
func (s *Store) Export(ctx context.Context) (*ExportData, error) {
	entries, err := s.ListEntries(ctx, ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("export entries: %w", err)
	}
	// oldest first reads better in a file
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })

	notes, err := s.AllWeeklyNotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("export weekly notes: %w", err)
	}
	records := make([]WeeklyNotesRecord, 0, len(notes))
	for weekStart, n := range notes {
		records = append(records, WeeklyNotesRecord{WeekStart: weekStart, Notes: n})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].WeekStart < records[j].WeekStart })

	projects, err := s.ListProjects(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("export projects: %w", err)
	}

	return &ExportData{
		Version:     SnapshotVersion,
		ExportedAt:  s.cfg.Now().UTC().Format(time.RFC3339),
		Entries:     entries,
		WeeklyNotes: records,
		Projects:    projects,
	}, nil
}

// Import adds the snapshot's rows. Rows whose date, week or ID already
// exist are skipped, so importing the same file twice is harmless.
func (s *Store) Import(ctx context.Context, data *ExportData) (*ImportResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	result := &ImportResult{}
	now := s.nowMillis()

	for _, e := range data.Entries {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("import entry %s: %w", e.Date, err)
		}
		if e.CreatedAt == 0 {
			e.CreatedAt = now
		}
		if e.UpdatedAt == 0 {
			e.UpdatedAt = e.CreatedAt
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		n, err := writeEntry(ctx, tx, e, false)
		if err != nil {
			return nil, fmt.Errorf("import entry %s: %w", e.Date, err)
		}
		result.EntriesImported += int(n)
	}

	for _, rec := range data.WeeklyNotes {
		if _, err := calendar.ParseDate(rec.WeekStart); err != nil {
			return nil, fmt.Errorf("import weekly notes: %w", err)
		}
		raw, err := json.Marshal(rec.Notes)
		if err != nil {
			return nil, err
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO weekly_notes (week_start, notes, updated_at) VALUES (?, ?, ?)
			ON CONFLICT DO NOTHING`, rec.WeekStart, string(raw), now)
		if err != nil {
			return nil, fmt.Errorf("import weekly notes %s: %w", rec.WeekStart, err)
		}
		n, _ := res.RowsAffected()
		result.WeeklyNotesImported += int(n)
	}

	for _, p := range data.Projects {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("import project %s: %w", p.ID, err)
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING`,
			p.ID, p.Crew, nullString(p.JiraLink), p.Title, nullString(p.NotionLink), string(p.Status), p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("import project %s: %w", p.ID, err)
		}
		n, _ := res.RowsAffected()
		result.ProjectsImported += int(n)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return result, nil
}

// WriteSnapshot writes data to path atomically: it writes a temp file
// next to path and renames it into place. An existing file is kept as
// path + BackupSuffix.
func WriteSnapshot(path string, data *ExportData) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	tmpFile := path + TmpSuffix
	if err := os.WriteFile(tmpFile, out, FilePermissions); err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+BackupSuffix); err != nil {
			log.Printf("Warning: failed to create backup: %v", err)
		}
	}

	return os.Rename(tmpFile, path)
}

// ReadSnapshot loads a snapshot written by WriteSnapshot
func ReadSnapshot(path string) (*ExportData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Printf("Error closing snapshot file: %v", err)
		}
	}()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &data, nil
}
