package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/klabast/wb-services/trace/internal/journal"
)

// GetWeeklyNotes returns the notes stored for weekStart, or ErrNotFound
func (s *Store) GetWeeklyNotes(ctx context.Context, weekStart string) (*journal.WeeklyNotes, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT notes FROM weekly_notes WHERE week_start = ?`, weekStart).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var notes journal.WeeklyNotes
	if err := json.Unmarshal([]byte(raw), &notes); err != nil {
		return nil, fmt.Errorf("weekly notes %s: %w", weekStart, err)
	}
	return &notes, nil
}

// SetWeeklyNotes replaces the notes of weekStart
func (s *Store) SetWeeklyNotes(ctx context.Context, weekStart string, notes journal.WeeklyNotes) error {
	raw, err := json.Marshal(notes)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO weekly_notes (week_start, notes, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(week_start) DO UPDATE SET notes = excluded.notes, updated_at = excluded.updated_at`,
		weekStart, string(raw), s.nowMillis())
	return err
}

// AllWeeklyNotes returns every stored week keyed by its start date
func (s *Store) AllWeeklyNotes(ctx context.Context) (map[string]journal.WeeklyNotes, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT week_start, notes FROM weekly_notes ORDER BY week_start`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]journal.WeeklyNotes)
	for rows.Next() {
		var weekStart, raw string
		if err := rows.Scan(&weekStart, &raw); err != nil {
			return nil, err
		}
		var notes journal.WeeklyNotes
		if err := json.Unmarshal([]byte(raw), &notes); err != nil {
			return nil, fmt.Errorf("weekly notes %s: %w", weekStart, err)
		}
		out[weekStart] = notes
	}
	return out, rows.Err()
}
