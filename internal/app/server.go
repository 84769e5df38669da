// Package app is the HTTP service of the journal: entries, weeks, the
// month calendar, projects, exports and the optional AI helpers.
package app

import (
	"context"
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/klabast/wb-services/trace/internal/ai"
	"github.com/klabast/wb-services/trace/internal/calendar"
	"github.com/klabast/wb-services/trace/internal/journal"
	"github.com/klabast/wb-services/trace/internal/store"
)

// EntryRepository reads and writes daily entries
type EntryRepository interface {
	GetEntry(ctx context.Context, date string) (*journal.Entry, error)
	ListEntries(ctx context.Context, opts store.ListOptions) ([]journal.Entry, error)
	EntryDates(ctx context.Context, from, to string) ([]string, error)
	UpsertEntry(ctx context.Context, e journal.Entry) (journal.Entry, error)
	DeleteEntry(ctx context.Context, date string) error
	SearchEntries(ctx context.Context, query string, limit int) ([]journal.Entry, error)
}

// WeeklyNotesRepository reads and writes the notes of a week
type WeeklyNotesRepository interface {
	GetWeeklyNotes(ctx context.Context, weekStart string) (*journal.WeeklyNotes, error)
	SetWeeklyNotes(ctx context.Context, weekStart string, notes journal.WeeklyNotes) error
}

// ProjectRepository manages projects
type ProjectRepository interface {
	ListProjects(ctx context.Context, status journal.ProjectStatus) ([]journal.Project, error)
	GetProject(ctx context.Context, id string) (*journal.Project, error)
	CreateProject(ctx context.Context, p journal.Project) (journal.Project, error)
	UpdateProject(ctx context.Context, id string, patch store.ProjectPatch) (journal.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// SnapshotRepository dumps and restores the whole journal
type SnapshotRepository interface {
	Export(ctx context.Context) (*store.ExportData, error)
	Import(ctx context.Context, data *store.ExportData) (*store.ImportResult, error)
}

// Repository is everything the server persists. *store.Store satisfies it.
type Repository interface {
	EntryRepository
	WeeklyNotesRepository
	ProjectRepository
	SnapshotRepository
	PreferenceStore
	Ping(ctx context.Context) error
}

// SummaryGenerator writes a weekly review of entries
type SummaryGenerator interface {
	Summarize(ctx context.Context, weekStart, weekEnd string, entries []journal.Entry, projects []journal.Project) (string, error)
}

// Searcher answers natural-language questions about entries
type Searcher interface {
	Search(ctx context.Context, query string, entries []journal.Entry, projects []journal.Project) (ai.SearchResult, error)
}

// Options wires a Server. Summarizer and Searcher may be nil, which
// disables the AI routes.
type Options struct {
	Repo        Repository
	Calendar    *calendar.Calendar
	Auth        *Auth
	Summarizer  SummaryGenerator
	Searcher    Searcher
	MondayStart bool
	AccessLog   io.Writer
	Metrics     *Metrics
}

// Server serves the journal API
type Server struct {
	repo        Repository
	cal         *calendar.Calendar
	auth        *Auth
	summarizer  SummaryGenerator
	searcher    Searcher
	cache       *ai.SearchCache
	mondayStart bool
	accessLog   io.Writer
	metrics     *Metrics
}

// NewServer builds a Server from opts
func NewServer(opts Options) *Server {
	cal := opts.Calendar
	if cal == nil {
		cal = calendar.New(nil)
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Server{
		repo:        opts.Repo,
		cal:         cal,
		auth:        opts.Auth,
		summarizer:  opts.Summarizer,
		searcher:    opts.Searcher,
		cache:       &ai.SearchCache{},
		mondayStart: opts.MondayStart,
		accessLog:   opts.AccessLog,
		metrics:     metrics,
	}
}

// AIEnabled reports whether the AI routes are served
func (s *Server) AIEnabled() bool {
	return s.summarizer != nil && s.searcher != nil
}

// Router builds the route table
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.metrics.Middleware)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.HandleHealth).Methods(http.MethodGet)
	api.HandleFunc("/config", s.HandleConfig).Methods(http.MethodGet)

	api.HandleFunc("/entries", s.HandleListEntries).Methods(http.MethodGet)
	api.HandleFunc("/entries/search", s.HandleSearchEntries).Methods(http.MethodGet)
	api.HandleFunc("/entries/{date}", s.HandleGetEntry).Methods(http.MethodGet)
	api.HandleFunc("/entries/{date}", s.auth.Require(s.HandlePutEntry)).Methods(http.MethodPut)
	api.HandleFunc("/entries/{date}", s.auth.Require(s.HandleDeleteEntry)).Methods(http.MethodDelete)

	api.HandleFunc("/weeks/{date}", s.HandleWeek).Methods(http.MethodGet)
	api.HandleFunc("/weekly-notes/{weekStart}", s.HandleGetWeeklyNotes).Methods(http.MethodGet)
	api.HandleFunc("/weekly-notes/{weekStart}", s.auth.Require(s.HandlePutWeeklyNotes)).Methods(http.MethodPut)

	api.HandleFunc("/calendar/{year:[0-9]+}/{month:[0-9]+}", s.HandleCalendar).Methods(http.MethodGet)

	api.HandleFunc("/projects", s.HandleListProjects).Methods(http.MethodGet)
	api.HandleFunc("/projects", s.auth.Require(s.HandleCreateProject)).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}", s.HandleGetProject).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}", s.auth.Require(s.HandleUpdateProject)).Methods(http.MethodPatch)
	api.HandleFunc("/projects/{id}", s.auth.Require(s.HandleDeleteProject)).Methods(http.MethodDelete)

	api.HandleFunc("/people", s.HandlePeople).Methods(http.MethodGet)

	api.HandleFunc("/ai/search", s.HandleAISearch).Methods(http.MethodPost)
	api.HandleFunc("/ai/summary", s.HandleAISummary).Methods(http.MethodPost)

	api.HandleFunc("/export", s.HandleExport).Methods(http.MethodGet)
	api.HandleFunc("/import", s.auth.Require(s.HandleImport)).Methods(http.MethodPost)

	api.HandleFunc("/preferences", s.HandleGetPreferences).Methods(http.MethodGet)
	api.HandleFunc("/preferences", s.auth.Require(s.HandlePutPreferences)).Methods(http.MethodPut)

	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	return r
}

// Handler is the router wrapped with the access log
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Router()
	if s.accessLog != nil {
		h = handlers.CombinedLoggingHandler(s.accessLog, h)
	}
	return h
}
