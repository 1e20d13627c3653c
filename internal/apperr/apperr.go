// Package apperr defines the error kinds surfaced by the math OCR pipeline.
//
// Only two kinds are fatal to a conversion request: KindInvalidImage and
// KindRecognitionUnavailable. Parse failures inside the LaTeX converter never
// become errors; they are recovered with a literal fallback.
package apperr

import (
	"errors"
	"fmt"
)

// Kind categorizes an AppError.
type Kind string

const (
	KindInvalidImage           Kind = "invalid_image"
	KindRecognitionUnavailable Kind = "recognition_unavailable"
	KindInvalidArgument        Kind = "invalid_argument"
	KindExport                 Kind = "export"
	KindInternal               Kind = "internal"
)

// AppError is a structured application error.
type AppError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// InvalidImage reports a malformed, undecodable or empty input image.
func InvalidImage(message string, cause error) *AppError {
	return &AppError{Kind: KindInvalidImage, Message: message, Cause: cause}
}

// RecognitionUnavailable reports an OCR engine that is missing or misconfigured.
func RecognitionUnavailable(message string, cause error) *AppError {
	return &AppError{Kind: KindRecognitionUnavailable, Message: message, Cause: cause}
}

// InvalidArgument reports a bad tool argument or configuration value.
func InvalidArgument(message string, cause error) *AppError {
	return &AppError{Kind: KindInvalidArgument, Message: message, Cause: cause}
}

// Export reports a failure while packaging results into a document.
func Export(message string, cause error) *AppError {
	return &AppError{Kind: KindExport, Message: message, Cause: cause}
}

// KindOf returns the kind of the first AppError in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is checks whether err carries an AppError of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
