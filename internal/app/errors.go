package app

import "errors"

// Known error kinds. Handlers translate each to its fixed HTTP status;
// anything else collapses to a generic internal error at the API boundary.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrSessionNotFound  = errors.New("session not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrUploadFailed     = errors.New("document upload failed")
	ErrGeneration       = errors.New("gemini generation failed")
)
