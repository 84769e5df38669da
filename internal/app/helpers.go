package app

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/klabast/wb-services/trace/internal/calendar"
	"github.com/klabast/wb-services/trace/internal/journal"
	"github.com/klabast/wb-services/trace/internal/store"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// writeJSON encodes v with the given status and logs encoding failures
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// decodeJSON reads a JSON body into v, answering 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, ErrInvalidBody, http.StatusBadRequest)
		return false
	}
	return true
}

// dateParam normalizes a date taken from the URL, answering 400 when it
// is not a valid YYYY-MM-DD date
func dateParam(w http.ResponseWriter, value string) (string, bool) {
	if _, err := calendar.ParseDate(value); err != nil {
		http.Error(w, ErrInvalidDateFormat, http.StatusBadRequest)
		return "", false
	}
	return value, true
}

// optionalDate is dateParam for query parameters that may be absent
func optionalDate(w http.ResponseWriter, value string) (string, bool) {
	if value == "" {
		return "", true
	}
	return dateParam(w, value)
}

// intParam parses a positive integer query parameter, using def when empty
func intParam(value string, def int) (int, error) {
	if value == "" {
		return def, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, errors.New("must be a positive integer")
	}
	return n, nil
}

// writeStoreError maps a storage error to its status code. notFound is the
// message sent for store.ErrNotFound.
func writeStoreError(w http.ResponseWriter, err error, notFound string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, notFound, http.StatusNotFound)
	case errors.Is(err, calendar.ErrInvalidDate):
		http.Error(w, ErrInvalidDateFormat, http.StatusBadRequest)
	case errors.Is(err, journal.ErrInvalidMood):
		http.Error(w, ErrInvalidMoodValue, http.StatusUnprocessableEntity)
	case errors.Is(err, journal.ErrInvalidProject):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("❌ Storage error: %v", err)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
	}
}
