package translate

import "fmt"

// Error codes for the translation stage
const (
	ErrCodeTimeout   = "TRANSLATE_TIMEOUT"
	ErrCodeService   = "TRANSLATE_SERVICE"
	ErrCodeMalformed = "TRANSLATE_MALFORMED"
	ErrCodeCancelled = "CANCELLED"
	ErrCodeCache     = "CACHE_FAILED"
)

// TranslateError represents an error from the translation stage. Element
// and Page identify the failing element when known (Page 0 means unknown)
// so callers can resume from it.
type TranslateError struct {
	Code    string
	Message string
	Details string
	Element int
	Page    int
	Cause   error
}

// Error implements the error interface
func (e *TranslateError) Error() string {
	s := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Page > 0 {
		s += fmt.Sprintf(" (element %d, page %d)", e.Element, e.Page)
	}
	if e.Details != "" {
		s += ": " + e.Details
	}
	return s
}

// Unwrap returns the underlying cause
func (e *TranslateError) Unwrap() error {
	return e.Cause
}

// NewTimeoutError creates an error for a translation request that exceeded
// its deadline
func NewTimeoutError(details string, cause error) *TranslateError {
	return &TranslateError{
		Code:    ErrCodeTimeout,
		Message: "translation request timed out",
		Details: details,
		Cause:   cause,
	}
}

// NewServiceError creates an error for a failed translation service call
func NewServiceError(details string, cause error) *TranslateError {
	return &TranslateError{
		Code:    ErrCodeService,
		Message: "translation service call failed",
		Details: details,
		Cause:   cause,
	}
}

// NewMalformedError creates an error for an unusable service response
func NewMalformedError(details string) *TranslateError {
	return &TranslateError{
		Code:    ErrCodeMalformed,
		Message: "translation response unusable",
		Details: details,
	}
}

// NewCancelledError creates an error for a cancelled translation run
func NewCancelledError(cause error) *TranslateError {
	return &TranslateError{
		Code:    ErrCodeCancelled,
		Message: "translation cancelled",
		Cause:   cause,
	}
}

// NewCacheError creates an error for a cache load or save failure
func NewCacheError(details string, cause error) *TranslateError {
	return &TranslateError{
		Code:    ErrCodeCache,
		Message: "translation cache operation failed",
		Details: details,
		Cause:   cause,
	}
}
