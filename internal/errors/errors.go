package errors

import (
	"errors"
	"fmt"
)

// DocError is the structured error type for doctx.
// It carries enough context for logging, health reporting, and the
// tool layer's wire-format translation.
type DocError struct {
	// Code is the unique error code (e.g., "ERR_404_DOCUMENT_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Parse, Watch, Query, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool
}

// Error implements the error interface.
func (e *DocError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *DocError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
func (e *DocError) Is(target error) bool {
	if t, ok := target.(*DocError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *DocError) WithDetail(key, value string) *DocError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new DocError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *DocError {
	return &DocError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a DocError from an existing error.
// The error's message becomes the DocError message.
func Wrap(code string, err error) *DocError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// Parse creates a parse error for a single document.
// Parse errors never abort a batch; the offending document is skipped.
func Parse(code string, path string, cause error) *DocError {
	msg := fmt.Sprintf("parse %s", path)
	if cause != nil {
		msg = fmt.Sprintf("parse %s: %v", path, cause)
	}
	return New(code, msg, cause).WithDetail("path", path)
}

// NotFound creates a document-not-found error for the given key.
// Distinct from an empty search result.
func NotFound(key string) *DocError {
	return New(ErrCodeDocumentNotFound, fmt.Sprintf("document not found: %s", key), nil).
		WithDetail("key", key)
}

// QueryTimeout creates a query timeout error.
func QueryTimeout(cause error) *DocError {
	return New(ErrCodeQueryTimeout, "query exceeded its timeout budget", cause)
}

// IndexWarming indicates the engine has not finished its initial scan.
func IndexWarming() *DocError {
	return New(ErrCodeIndexWarming, "index is warming up, retry shortly", nil)
}

// WatchChannel creates a watch-channel failure error.
// Surfaced as a degraded-health signal, not thrown at query time.
func WatchChannel(cause error) *DocError {
	return Wrap(ErrCodeWatchChannel, cause)
}

// InvalidQuery creates a query validation error.
func InvalidQuery(message string) *DocError {
	return New(ErrCodeInvalidQuery, message, nil)
}

// IsNotFound reports whether err is a document-not-found error.
func IsNotFound(err error) bool {
	var de *DocError
	return errors.As(err, &de) && de.Code == ErrCodeDocumentNotFound
}

// IsParse reports whether err is localized to one document's parsing.
func IsParse(err error) bool {
	var de *DocError
	return errors.As(err, &de) && de.Category == CategoryParse
}

// IsTimeout reports whether err is a query timeout.
func IsTimeout(err error) bool {
	var de *DocError
	return errors.As(err, &de) && de.Code == ErrCodeQueryTimeout
}

// IsWarming reports whether err is an index-warming error.
func IsWarming(err error) bool {
	var de *DocError
	return errors.As(err, &de) && de.Code == ErrCodeIndexWarming
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var de *DocError
	if errors.As(err, &de) {
		return de.Retryable
	}
	return false
}

// GetCode extracts the error code from a DocError.
// Returns empty string if not a DocError.
func GetCode(err error) string {
	var de *DocError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
