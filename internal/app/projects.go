package app

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/klabast/wb-services/trace/internal/journal"
	"github.com/klabast/wb-services/trace/internal/store"
)

// projectListResponse carries the crews alongside the list for the filter UI
type projectListResponse struct {
	Projects []journal.Project `json:"projects"`
	Crews    []string          `json:"crews"`
}

// HandleListProjects lists projects. Query param: status.
func (s *Server) HandleListProjects(w http.ResponseWriter, r *http.Request) {
	status := journal.ProjectStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		http.Error(w, ErrInvalidFormat, http.StatusBadRequest)
		return
	}

	projects, err := s.repo.ListProjects(r.Context(), status)
	if err != nil {
		writeStoreError(w, err, ErrProjectNotFound)
		return
	}
	writeJSON(w, http.StatusOK, projectListResponse{
		Projects: projects,
		Crews:    journal.UniqueCrews(projects),
	})
}

// HandleGetProject returns one project
// URL: /api/projects/{id}
func (s *Server) HandleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.repo.GetProject(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err, ErrProjectNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleCreateProject stores a new project
func (s *Server) HandleCreateProject(w http.ResponseWriter, r *http.Request) {
	var p journal.Project
	if !decodeJSON(w, r, &p) {
		return
	}
	created, err := s.repo.CreateProject(r.Context(), p)
	if err != nil {
		writeStoreError(w, err, ErrProjectNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleUpdateProject applies a partial update
func (s *Server) HandleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var patch store.ProjectPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if patch.Empty() {
		http.Error(w, ErrInvalidBody, http.StatusBadRequest)
		return
	}
	updated, err := s.repo.UpdateProject(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		writeStoreError(w, err, ErrProjectNotFound)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleDeleteProject removes a project. Work items pointing at it are
// kept and simply no longer resolve.
func (s *Server) HandleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteProject(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, err, ErrProjectNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
