// Package errors provides structured error handling for doctx.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Document parse errors
//   - 3XX: Watch/notification errors
//   - 4XX: Query and validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryParse indicates document parsing errors, localized to one document.
	CategoryParse Category = "PARSE"
	// CategoryWatch indicates filesystem notification errors.
	CategoryWatch Category = "WATCH"
	// CategoryQuery indicates query and input validation errors.
	CategoryQuery Category = "QUERY"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but the engine can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Parse errors (200-299)
	ErrCodeUnsupportedType    = "ERR_201_UNSUPPORTED_TYPE"
	ErrCodeFrontMatterInvalid = "ERR_202_FRONT_MATTER_INVALID"
	ErrCodeNotText            = "ERR_203_NOT_TEXT"
	ErrCodeFileTooLarge       = "ERR_204_FILE_TOO_LARGE"

	// Watch errors (300-399)
	ErrCodeWatchChannel = "ERR_301_WATCH_CHANNEL"
	ErrCodeTransientIO  = "ERR_302_TRANSIENT_IO"

	// Query errors (400-499)
	ErrCodeInvalidQuery     = "ERR_401_INVALID_QUERY"
	ErrCodeQueryTimeout     = "ERR_402_QUERY_TIMEOUT"
	ErrCodeIndexWarming     = "ERR_403_INDEX_WARMING"
	ErrCodeDocumentNotFound = "ERR_404_DOCUMENT_NOT_FOUND"

	// Internal errors (500-599)
	ErrCodeInternal     = "ERR_501_INTERNAL"
	ErrCodeIndexLocked  = "ERR_502_INDEX_LOCKED"
	ErrCodeEngineClosed = "ERR_503_ENGINE_CLOSED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryParse
	case '3':
		return CategoryWatch
	case '4':
		return CategoryQuery
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeIndexLocked, ErrCodeEngineClosed:
		return SeverityFatal
	case ErrCodeWatchChannel, ErrCodeTransientIO, ErrCodeIndexWarming:
		return SeverityWarning
	}
	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeWatchChannel, ErrCodeTransientIO, ErrCodeIndexWarming:
		return true
	default:
		return false
	}
}
