package cli

// Error codes for structured error responses.
// These codes are stable and can be relied upon by agents.
const (
	// Config errors
	ErrConfigInvalid = "CONFIG_INVALID"

	// Catalog errors
	ErrCatalogEmpty   = "CATALOG_EMPTY"
	ErrCatalogInvalid = "CATALOG_INVALID"

	// Event errors
	ErrEventNotFound = "EVENT_NOT_FOUND"

	// File errors
	ErrFileNotFound   = "FILE_NOT_FOUND"
	ErrFileWriteError = "FILE_WRITE_ERROR"

	// Database errors
	ErrDatabaseError = "DATABASE_ERROR"

	// Input errors
	ErrInvalidInput = "INVALID_INPUT"

	// Ingestion errors
	ErrAborted = "ABORTED"
)

// Warning codes for non-fatal issues.
const (
	WarnFleetNotIngested = "FLEET_NOT_INGESTED"
	WarnScoresExist      = "SCORES_EXIST"
	WarnRowsSkipped      = "ROWS_SKIPPED"
)
