package ocr

import (
	"errors"
	"fmt"
)

// Common recognition errors
var (
	// ErrEmptyImage is returned when the submitted image has no content.
	ErrEmptyImage = errors.New("empty document image")

	// ErrEmptyText is returned when a provider responds successfully but
	// produced no readable text. Treated as a non-success response: the
	// orchestrator falls back on it.
	ErrEmptyText = errors.New("document contains no readable text")

	// ErrRecognitionFailed is returned when a provider call fails outright.
	ErrRecognitionFailed = errors.New("recognition failed")

	// ErrMissingCredentials is returned when neither GOOGLE_APPLICATION_CREDENTIALS
	// nor GOOGLE_CREDENTIALS environment variables are configured.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrAllProvidersFailed is returned when the fallback engine failed as
	// well; the document transitions to its error state.
	ErrAllProvidersFailed = errors.New("primary and fallback recognition both failed")
)

// OCRError wraps errors with additional context about the recognition failure.
type OCRError struct {
	// Op is the operation that failed (e.g., "Recognize", "NewVisionProvider").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *OCRError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *OCRError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *OCRError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapOCRError wraps an error as an OCRError if it isn't already one.
func WrapOCRError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var ocrErr *OCRError
	if errors.As(err, &ocrErr) {
		return err
	}

	return &OCRError{Op: op, Err: err, Details: details}
}
