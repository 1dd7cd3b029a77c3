package extract

import "fmt"

// Error codes for the extraction stage
const (
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeNoTextLayer       = "NO_TEXT_LAYER"
	ErrCodeExtractFailed     = "EXTRACT_FAILED"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeInvalid           = "INVALID"
)

// ExtractError represents an error during document extraction
type ExtractError struct {
	Code    string
	Message string
	Details string
	Page    int
	Cause   error
}

// Error implements the error interface
func (e *ExtractError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("[%s] %s (page %d): %s", e.Code, e.Message, e.Page, e.Details)
	}
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *ExtractError) Unwrap() error {
	return e.Cause
}

// NewUnsupportedFormatError creates an error for an input format the
// extractor does not handle
func NewUnsupportedFormatError(ext string) *ExtractError {
	return &ExtractError{
		Code:    ErrCodeUnsupportedFormat,
		Message: "unsupported input format",
		Details: ext,
	}
}

// NewNoTextLayerError creates an error for a PDF without extractable text
func NewNoTextLayerError(path string) *ExtractError {
	return &ExtractError{
		Code:    ErrCodeNoTextLayer,
		Message: "PDF has no extractable text layer",
		Details: path,
	}
}

// NewExtractFailedError creates an error for a failed extraction
func NewExtractFailedError(details string, page int, cause error) *ExtractError {
	return &ExtractError{
		Code:    ErrCodeExtractFailed,
		Message: "extraction failed",
		Details: details,
		Page:    page,
		Cause:   cause,
	}
}

// NewNotFoundError creates an error for a missing input file
func NewNotFoundError(path string, cause error) *ExtractError {
	return &ExtractError{
		Code:    ErrCodeNotFound,
		Message: "input file not found",
		Details: path,
		Cause:   cause,
	}
}

// NewInvalidInputError creates an error for an unreadable or corrupt input
func NewInvalidInputError(details string, cause error) *ExtractError {
	return &ExtractError{
		Code:    ErrCodeInvalid,
		Message: "invalid input",
		Details: details,
		Cause:   cause,
	}
}
