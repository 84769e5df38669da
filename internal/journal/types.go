// Package journal holds the journal's record types: daily entries,
// weekly notes and projects, plus the validation and normalization
// applied at the storage boundary.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/klabast/wb-services/trace/internal/calendar"
)

// MaxBullets caps the bullet list of a single entry
const MaxBullets = 10

// WorkItem links a day to a project it was worked on
type WorkItem struct {
	ProjectID string `json:"projectId"`
	DailyNote string `json:"dailyNote,omitempty"`
}

// Entry is one day's journal record. Date is unique per journal.
type Entry struct {
	ID        string     `json:"id"`
	Date      string     `json:"date"`
	Bullets   []string   `json:"bullets"`
	Events    []string   `json:"events,omitempty"`
	Mood      Mood       `json:"mood"`
	People    []Person   `json:"people"`
	Tomorrow  string     `json:"tomorrow,omitempty"`
	WorkItems []WorkItem `json:"workItems,omitempty"`
	CreatedAt int64      `json:"createdAt"` // ms
	UpdatedAt int64      `json:"updatedAt"` // ms
}

// UnmarshalJSON decodes an entry and normalizes legacy people, so
// snapshots with bare name strings load like current ones.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	var wire struct {
		plain
		People json.RawMessage `json:"people"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	people, err := NormalizeLegacyPeople(wire.People)
	if err != nil {
		return err
	}
	*e = Entry(wire.plain)
	e.People = people
	return nil
}

// Validate checks an entry before it is stored and reports every problem
// at once.
func (e Entry) Validate() error {
	var result *multierror.Error

	if _, err := calendar.ParseDate(e.Date); err != nil {
		result = multierror.Append(result, err)
	}
	if !e.Mood.Value.Valid() {
		result = multierror.Append(result, &InvalidMoodError{Value: string(e.Mood.Value)})
	}
	if len(e.Bullets) > MaxBullets {
		result = multierror.Append(result, fmt.Errorf("too many bullets: %d (max %d)", len(e.Bullets), MaxBullets))
	}
	for i, p := range e.People {
		if strings.TrimSpace(p.Name) == "" {
			result = multierror.Append(result, fmt.Errorf("person %d: name is required", i))
		}
		if p.Mood != "" && !p.Mood.Valid() {
			result = multierror.Append(result, fmt.Errorf("person %q: %w", p.Name, &InvalidMoodError{Value: string(p.Mood)}))
		}
	}
	for i, w := range e.WorkItems {
		if strings.TrimSpace(w.ProjectID) == "" {
			result = multierror.Append(result, fmt.Errorf("work item %d: project id is required", i))
		}
	}

	return result.ErrorOrNil()
}

// WeeklyTodo is a checklist item attached to a week
type WeeklyTodo struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// WeeklyNotes are the user's notes for one week, keyed by its start date.
// Highlights, NextExperiment, Reflection and Goals predate todos and are
// still read from older rows.
type WeeklyNotes struct {
	Todos          []WeeklyTodo `json:"todos,omitempty"`
	Highlights     []string     `json:"highlights,omitempty"`
	NextExperiment string       `json:"nextExperiment,omitempty"`
	Reflection     string       `json:"reflection,omitempty"`
	Goals          []string     `json:"goals,omitempty"`
}

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectPaused    ProjectStatus = "paused"
)

// Valid reports whether s is a known status
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectCompleted, ProjectPaused:
		return true
	}
	return false
}

// ErrInvalidProject is returned for projects missing required fields
var ErrInvalidProject = errors.New("invalid project")

// Project is a piece of ongoing work entries can reference
type Project struct {
	ID         string        `json:"id"`
	Crew       string        `json:"crew"`
	JiraLink   string        `json:"jiraLink,omitempty"`
	Title      string        `json:"title"`
	NotionLink string        `json:"notionLink,omitempty"`
	Status     ProjectStatus `json:"status"`
	CreatedAt  int64         `json:"createdAt"`
	UpdatedAt  int64         `json:"updatedAt"`
}

// Validate checks the fields a project cannot be stored without
func (p Project) Validate() error {
	switch {
	case strings.TrimSpace(p.Crew) == "":
		return fmt.Errorf("%w: crew is required", ErrInvalidProject)
	case strings.TrimSpace(p.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidProject)
	case !p.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalidProject, p.Status)
	}
	return nil
}

// JiraTicket extracts the ticket key (the last path segment, e.g.
// KCN-123) from the Jira link. Empty when there is no usable link.
func (p Project) JiraTicket() string {
	if p.JiraLink == "" {
		return ""
	}
	u, err := url.Parse(p.JiraLink)
	if err != nil || u.Path == "" {
		return ""
	}
	key := path.Base(strings.TrimSuffix(u.Path, "/"))
	if key == "." || key == "/" {
		return ""
	}
	return key
}

// FilterProjects returns the projects with the given status
func FilterProjects(projects []Project, status ProjectStatus) []Project {
	out := []Project{}
	for _, p := range projects {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

// UniqueCrews returns the sorted set of crews used by projects
func UniqueCrews(projects []Project) []string {
	seen := make(map[string]bool)
	crews := []string{}
	for _, p := range projects {
		if !seen[p.Crew] {
			seen[p.Crew] = true
			crews = append(crews, p.Crew)
		}
	}
	sort.Strings(crews)
	return crews
}
