package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/klabast/wb-services/trace/internal/journal"
)

// ListOptions bounds ListEntries. Empty fields leave that side open.
type ListOptions struct {
	From string
	To   string
}

const entryColumns = `id, date, mood, mood_note, bullets, events, people, tomorrow, work_items, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (journal.Entry, error) {
	var e journal.Entry
	var mood, bullets, events, people, workItems string
	if err := row.Scan(&e.ID, &e.Date, &mood, &e.Mood.Note, &bullets, &events, &people,
		&e.Tomorrow, &workItems, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return journal.Entry{}, err
	}
	e.Mood.Value = journal.MoodValue(mood)

	var err error
	if e.Bullets, err = decodeList[string](bullets); err != nil {
		return journal.Entry{}, fmt.Errorf("entry %s bullets: %w", e.Date, err)
	}
	if e.Events, err = decodeList[string](events); err != nil {
		return journal.Entry{}, fmt.Errorf("entry %s events: %w", e.Date, err)
	}
	if e.People, err = journal.NormalizeLegacyPeople([]byte(people)); err != nil {
		return journal.Entry{}, fmt.Errorf("entry %s: %w", e.Date, err)
	}
	if e.WorkItems, err = decodeList[journal.WorkItem](workItems); err != nil {
		return journal.Entry{}, fmt.Errorf("entry %s work items: %w", e.Date, err)
	}
	return e, nil
}

func collectEntries(rows *sql.Rows) ([]journal.Entry, error) {
	defer rows.Close()

	entries := []journal.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetEntry returns the entry for date, or ErrNotFound
func (s *Store) GetEntry(ctx context.Context, date string) (*journal.Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE date = ?`, date)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEntries returns entries within the options' range, newest first
func (s *Store) ListEntries(ctx context.Context, opts ListOptions) ([]journal.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE 1=1`
	var args []any
	if opts.From != "" {
		query += ` AND date >= ?`
		args = append(args, opts.From)
	}
	if opts.To != "" {
		query += ` AND date <= ?`
		args = append(args, opts.To)
	}
	query += ` ORDER BY date DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectEntries(rows)
}

// EntryDates returns the dates in from..to that have an entry, ascending
func (s *Store) EntryDates(ctx context.Context, from, to string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date FROM entries WHERE date >= ? AND date <= ? ORDER BY date ASC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// UpsertEntry creates the entry for e.Date or replaces its content.
// A new entry gets an ID and CreatedAt; an update keeps both and bumps
// UpdatedAt. The caller validates e beforehand.
func (s *Store) UpsertEntry(ctx context.Context, e journal.Entry) (journal.Entry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return journal.Entry{}, err
	}
	defer tx.Rollback()

	now := s.nowMillis()
	var id string
	var createdAt int64
	err = tx.QueryRowContext(ctx, `SELECT id, created_at FROM entries WHERE date = ?`, e.Date).Scan(&id, &createdAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		e.ID = uuid.NewString()
		e.CreatedAt = now
	case err != nil:
		return journal.Entry{}, err
	default:
		e.ID = id
		e.CreatedAt = createdAt
	}
	e.UpdatedAt = now

	if _, err := writeEntry(ctx, tx, e, true); err != nil {
		return journal.Entry{}, err
	}
	if err := tx.Commit(); err != nil {
		return journal.Entry{}, err
	}

	if e.Bullets == nil {
		e.Bullets = []string{}
	}
	if e.People == nil {
		e.People = []journal.Person{}
	}
	return e, nil
}

// writeEntry inserts e and reports the number of rows written. With
// replace, an existing row for the same date is overwritten; otherwise it
// is left alone.
func writeEntry(ctx context.Context, tx *sql.Tx, e journal.Entry, replace bool) (int64, error) {
	bullets, err := encodeList(e.Bullets)
	if err != nil {
		return 0, err
	}
	events, err := encodeList(e.Events)
	if err != nil {
		return 0, err
	}
	people, err := encodeList(e.People)
	if err != nil {
		return 0, err
	}
	workItems, err := encodeList(e.WorkItems)
	if err != nil {
		return 0, err
	}

	conflict := `ON CONFLICT DO NOTHING`
	if replace {
		conflict = `ON CONFLICT(date) DO UPDATE SET
			mood = excluded.mood,
			mood_note = excluded.mood_note,
			bullets = excluded.bullets,
			events = excluded.events,
			people = excluded.people,
			tomorrow = excluded.tomorrow,
			work_items = excluded.work_items,
			updated_at = excluded.updated_at`
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) `+conflict,
		e.ID, e.Date, string(e.Mood.Value), e.Mood.Note, bullets, events, people,
		e.Tomorrow, workItems, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteEntry removes the entry for date, or returns ErrNotFound
func (s *Store) DeleteEntry(ctx context.Context, date string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE date = ?`, date)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchEntries finds entries whose text mentions every whitespace-separated
// term of query, newest first. limit <= 0 means 20.
func (s *Store) SearchEntries(ctx context.Context, query string, limit int) ([]journal.Entry, error) {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return []journal.Entry{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	sqlQuery := `SELECT ` + entryColumns + ` FROM entries WHERE 1=1`
	var args []any
	for _, term := range terms {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		sqlQuery += ` AND lower(bullets || ' ' || events || ' ' || mood_note || ' ' || people || ' ' || tomorrow || ' ' || work_items) LIKE ? ESCAPE '\'`
		args = append(args, pattern)
	}
	sqlQuery += ` ORDER BY date DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	return collectEntries(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
