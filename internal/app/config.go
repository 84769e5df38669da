package app

// Constants
const (
	// Error messages
	ErrInvalidDateFormat  = "Invalid date format"
	ErrInvalidYear        = "Invalid year"
	ErrInvalidMonth       = "Invalid month"
	ErrInvalidFormat      = "Invalid format"
	ErrInvalidBody        = "Invalid request body"
	ErrInvalidMoodValue   = "Invalid mood"
	ErrDateMismatch       = "Date in body does not match URL"
	ErrEntryNotFound      = "Entry not found"
	ErrNotesNotFound      = "Weekly notes not found"
	ErrProjectNotFound    = "Project not found"
	ErrInternalServer     = "Internal server error"
	ErrFailedToSave       = "Failed to save entry"
	ErrFailedToGenerate   = "Failed to generate export"
	ErrAIDisabled         = "AI features are disabled (GEMINI_API_KEY not set)"
	ErrAIFailed           = "AI request failed"
	ErrNoEntriesToSummary = "No entries provided"
	ErrMissingQuery       = "Missing query"
	ErrStorageUnavailable = "Storage unavailable"

	// Week start query values
	WeekStartSunday = "sunday"
	WeekStartMonday = "monday"

	// Preference key the UI state is stored under
	PreferencesKey = "ui"

	// Default result size of keyword search
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100

	// ICS constants
	ICSProductID = "-//wb-services//trace//KO"
	ICSTimezone  = "Asia/Seoul"
	ICSDomain    = "trace.wb-services.local"
)
