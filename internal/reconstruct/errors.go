package reconstruct

import "fmt"

// Error codes for the reconstruction stage
const (
	ErrCodeFontMissing  = "FONT_MISSING"
	ErrCodeRenderFailed = "RENDER_FAILED"
	ErrCodeVerifyFailed = "VERIFY_FAILED"
)

// ReconstructError represents an error during document reconstruction
type ReconstructError struct {
	Code    string
	Message string
	Details string
	Page    int
	Cause   error
}

// Error implements the error interface
func (e *ReconstructError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("[%s] %s (page %d): %s", e.Code, e.Message, e.Page, e.Details)
	}
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *ReconstructError) Unwrap() error {
	return e.Cause
}

// NewFontMissingError creates an error for a missing font resource. This is
// fatal at startup: reconstruction cannot run without a default font.
func NewFontMissingError(details string, cause error) *ReconstructError {
	return &ReconstructError{
		Code:    ErrCodeFontMissing,
		Message: "font resource missing",
		Details: details,
		Cause:   cause,
	}
}

// NewRenderFailedError creates an error for a failed render operation
func NewRenderFailedError(details string, page int, cause error) *ReconstructError {
	return &ReconstructError{
		Code:    ErrCodeRenderFailed,
		Message: "rendering failed",
		Details: details,
		Page:    page,
		Cause:   cause,
	}
}

// NewVerifyFailedError creates an error for a structurally invalid output
func NewVerifyFailedError(details string, cause error) *ReconstructError {
	return &ReconstructError{
		Code:    ErrCodeVerifyFailed,
		Message: "output verification failed",
		Details: details,
		Cause:   cause,
	}
}
