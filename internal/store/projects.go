package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/klabast/wb-services/trace/internal/journal"
)

// ProjectPatch holds the fields UpdateProject changes. Nil fields are kept.
type ProjectPatch struct {
	Crew       *string                `json:"crew,omitempty"`
	JiraLink   *string                `json:"jiraLink,omitempty"`
	Title      *string                `json:"title,omitempty"`
	NotionLink *string                `json:"notionLink,omitempty"`
	Status     *journal.ProjectStatus `json:"status,omitempty"`
}

// Empty reports whether the patch changes nothing
func (p ProjectPatch) Empty() bool {
	return p.Crew == nil && p.JiraLink == nil && p.Title == nil && p.NotionLink == nil && p.Status == nil
}

func (p ProjectPatch) apply(project journal.Project) journal.Project {
	if p.Crew != nil {
		project.Crew = *p.Crew
	}
	if p.JiraLink != nil {
		project.JiraLink = *p.JiraLink
	}
	if p.Title != nil {
		project.Title = *p.Title
	}
	if p.NotionLink != nil {
		project.NotionLink = *p.NotionLink
	}
	if p.Status != nil {
		project.Status = *p.Status
	}
	return project
}

const projectColumns = `id, crew, jira_link, title, notion_link, status, created_at, updated_at`

func scanProject(row rowScanner) (journal.Project, error) {
	var p journal.Project
	var jira, notion sql.NullString
	var status string
	if err := row.Scan(&p.ID, &p.Crew, &jira, &p.Title, &notion, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return journal.Project{}, err
	}
	p.JiraLink = jira.String
	p.NotionLink = notion.String
	p.Status = journal.ProjectStatus(status)
	return p, nil
}

// ListProjects returns projects, most recently updated first. A non-empty
// status restricts the list.
func (s *Store) ListProjects(ctx context.Context, status journal.ProjectStatus) ([]journal.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY updated_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []journal.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// GetProject returns one project, or ErrNotFound
func (s *Store) GetProject(ctx context.Context, id string) (*journal.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject stores p under a new ID. An empty status means active.
func (s *Store) CreateProject(ctx context.Context, p journal.Project) (journal.Project, error) {
	p.Crew = strings.TrimSpace(p.Crew)
	if p.Status == "" {
		p.Status = journal.ProjectActive
	}
	if err := p.Validate(); err != nil {
		return journal.Project{}, err
	}

	now := s.nowMillis()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Crew, nullString(p.JiraLink), p.Title, nullString(p.NotionLink), string(p.Status), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return journal.Project{}, err
	}
	return p, nil
}

// UpdateProject applies patch to project id and returns the result
func (s *Store) UpdateProject(ctx context.Context, id string, patch ProjectPatch) (journal.Project, error) {
	current, err := s.GetProject(ctx, id)
	if err != nil {
		return journal.Project{}, err
	}

	updated := patch.apply(*current)
	if err := updated.Validate(); err != nil {
		return journal.Project{}, err
	}
	updated.UpdatedAt = s.nowMillis()

	_, err = s.db.ExecContext(ctx, `UPDATE projects SET crew = ?, jira_link = ?, title = ?, notion_link = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		updated.Crew, nullString(updated.JiraLink), updated.Title, nullString(updated.NotionLink),
		string(updated.Status), updated.UpdatedAt, id)
	if err != nil {
		return journal.Project{}, err
	}
	return updated, nil
}

// DeleteProject removes project id, or returns ErrNotFound
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
