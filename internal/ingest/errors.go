package ingest

import (
	"errors"
	"fmt"

	"document-backend/internal/documents"
)

// ErrMissingFile is returned when the upload carries no file part.
var ErrMissingFile = errors.New("no file was uploaded")

// ErrUnsupportedFormat is returned for anything that is not a PDF.
var ErrUnsupportedFormat = errors.New("the file must be a PDF")

// ErrInvalidFileName is returned for names with traversal patterns.
var ErrInvalidFileName = errors.New("invalid file name")

// ErrInsufficientText is returned when extraction yields fewer than the
// minimum number of meaningful characters; nothing is persisted.
var ErrInsufficientText = errors.New("could not extract enough text from the PDF")

// FileTooLargeError reports an upload over the size limit, carrying the
// actual size so handlers can echo it back.
type FileTooLargeError struct {
	SizeBytes int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf(
		"file is too large: maximum %dMB allowed, actual size %.1fMB",
		documents.MaxFileSizeBytes/(1<<20),
		float64(e.SizeBytes)/(1<<20),
	)
}

// ProcessingError wraps an unexpected fault in the ingestion workflow.
type ProcessingError struct {
	Cause error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("document processing failed: %v", e.Cause)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}
