package app

import (
	"errors"
	"log"
	"net/http"

	"github.com/klabast/wb-services/trace/internal/ai"
	"github.com/klabast/wb-services/trace/internal/calendar"
	"github.com/klabast/wb-services/trace/internal/store"
)

type aiSearchRequest struct {
	Query string `json:"query"`
}

type aiSearchResponse struct {
	ai.SearchResult
	Cached bool `json:"cached"`
}

// HandleAISearch answers a natural-language question over all entries.
// The last answer is cached until an entry changes.
func (s *Server) HandleAISearch(w http.ResponseWriter, r *http.Request) {
	if s.searcher == nil {
		http.Error(w, ErrAIDisabled, http.StatusServiceUnavailable)
		return
	}

	var req aiSearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Query == "" {
		http.Error(w, ErrMissingQuery, http.StatusBadRequest)
		return
	}

	if cached, ok := s.cache.Get(req.Query); ok {
		s.metrics.SearchCache(true)
		writeJSON(w, http.StatusOK, aiSearchResponse{SearchResult: cached, Cached: true})
		return
	}
	s.metrics.SearchCache(false)

	ctx := r.Context()
	entries, err := s.repo.ListEntries(ctx, store.ListOptions{})
	if err != nil {
		writeStoreError(w, err, ErrEntryNotFound)
		return
	}
	projects, err := s.repo.ListProjects(ctx, "")
	if err != nil {
		writeStoreError(w, err, ErrProjectNotFound)
		return
	}

	result, err := s.searcher.Search(ctx, req.Query, entries, projects)
	s.metrics.AIRequest("search", err)
	if err != nil {
		log.Printf("❌ AI search error: %v", err)
		http.Error(w, ErrAIFailed, http.StatusBadGateway)
		return
	}
	s.cache.Put(req.Query, result)

	writeJSON(w, http.StatusOK, aiSearchResponse{SearchResult: result})
}

type aiSummaryRequest struct {
	Date      string `json:"date"`
	WeekStart string `json:"weekStart"`
	Start     string `json:"start"`
}

type aiSummaryResponse struct {
	Summary      string `json:"summary"`
	WeekStart    string `json:"weekStart"`
	WeekEnd      string `json:"weekEnd"`
	EntriesCount int    `json:"entriesCount"`
}

// HandleAISummary writes a review of the week containing date (or
// weekStart). Weeks without entries are rejected.
func (s *Server) HandleAISummary(w http.ResponseWriter, r *http.Request) {
	if s.summarizer == nil {
		http.Error(w, ErrAIDisabled, http.StatusServiceUnavailable)
		return
	}

	var req aiSummaryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	date := req.Date
	if date == "" {
		date = req.WeekStart
	}
	if date == "" {
		date = s.cal.Today()
	}
	mondayStart := s.mondayStart
	switch req.Start {
	case WeekStartSunday:
		mondayStart = false
	case WeekStartMonday:
		mondayStart = true
	}

	week, err := calendar.WeekRange(date, mondayStart)
	if err != nil {
		http.Error(w, ErrInvalidDateFormat, http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	entries, err := s.repo.ListEntries(ctx, store.ListOptions{From: week.WeekStart, To: week.WeekEnd})
	if err != nil {
		writeStoreError(w, err, ErrEntryNotFound)
		return
	}
	projects, err := s.repo.ListProjects(ctx, "")
	if err != nil {
		writeStoreError(w, err, ErrProjectNotFound)
		return
	}

	// oldest first reads like a diary
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	text, err := s.summarizer.Summarize(ctx, week.WeekStart, week.WeekEnd, entries, projects)
	if errors.Is(err, ai.ErrNoEntries) {
		http.Error(w, ErrNoEntriesToSummary, http.StatusBadRequest)
		return
	}
	s.metrics.AIRequest("summary", err)
	if err != nil {
		log.Printf("❌ AI summary error: %v", err)
		http.Error(w, ErrAIFailed, http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, aiSummaryResponse{
		Summary:      text,
		WeekStart:    week.WeekStart,
		WeekEnd:      week.WeekEnd,
		EntriesCount: len(entries),
	})
}
