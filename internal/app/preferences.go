package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/klabast/wb-services/trace/internal/journal"
	"github.com/klabast/wb-services/trace/internal/store"
)

// PreferenceStore persists small string values by key
type PreferenceStore interface {
	LoadPreference(ctx context.Context, key string) (string, error)
	SavePreference(ctx context.Context, key, value string) error
}

// Preferences is the UI state kept between sessions
type Preferences struct {
	DarkMode    bool                `json:"darkMode"`
	AvatarStyle journal.AvatarStyle `json:"avatarStyle"`
}

// DefaultPreferences is used until the user saves something
func DefaultPreferences() Preferences {
	return Preferences{AvatarStyle: journal.DefaultAvatarStyle}
}

// LoadPreferences reads the saved preferences, falling back to defaults
// when nothing was saved yet
func LoadPreferences(ctx context.Context, ps PreferenceStore) (Preferences, error) {
	raw, err := ps.LoadPreference(ctx, PreferencesKey)
	if errors.Is(err, store.ErrNotFound) {
		return DefaultPreferences(), nil
	}
	if err != nil {
		return Preferences{}, err
	}

	p := DefaultPreferences()
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Preferences{}, fmt.Errorf("preferences: %w", err)
	}
	if !p.AvatarStyle.Valid() {
		p.AvatarStyle = journal.DefaultAvatarStyle
	}
	return p, nil
}

// SavePreferences stores p. An empty avatar style means the default.
func SavePreferences(ctx context.Context, ps PreferenceStore, p Preferences) error {
	if p.AvatarStyle == "" {
		p.AvatarStyle = journal.DefaultAvatarStyle
	}
	if !p.AvatarStyle.Valid() {
		return fmt.Errorf("unknown avatar style %q", p.AvatarStyle)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return ps.SavePreference(ctx, PreferencesKey, string(raw))
}

// HandleGetPreferences returns the saved UI preferences
func (s *Server) HandleGetPreferences(w http.ResponseWriter, r *http.Request) {
	p, err := LoadPreferences(r.Context(), s.repo)
	if err != nil {
		writeStoreError(w, err, ErrInternalServer)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandlePutPreferences replaces the UI preferences
func (s *Server) HandlePutPreferences(w http.ResponseWriter, r *http.Request) {
	var p Preferences
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := SavePreferences(r.Context(), s.repo, p); err != nil {
		if p.AvatarStyle != "" && !p.AvatarStyle.Valid() {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeStoreError(w, err, ErrInternalServer)
		return
	}
	saved, err := LoadPreferences(r.Context(), s.repo)
	if err != nil {
		writeStoreError(w, err, ErrInternalServer)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
