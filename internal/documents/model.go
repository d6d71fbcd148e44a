package documents

import (
	"time"

	"document-backend/internal/shared/util"
)

// Extraction methods stored on a document.
const (
	MethodNative = "native"
	MethodOCR    = "ocr"
)

// MaxFileSizeBytes is the upload ceiling enforced at ingestion.
const MaxFileSizeBytes = 50 << 20

// Document is the persisted record of one processed PDF.
type Document struct {
	ID                string
	UserID            string
	OwnerUsername     string
	FileName          string
	SizeBytes         int64
	ExtractedText     string
	ExtractionMethod  string
	ProcessingSeconds *float64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Deleted           bool
	DeletedAt         *time.Time
}

// HumanSize renders the stored size for display.
func (d Document) HumanSize() string {
	return util.HumanSize(d.SizeBytes)
}

// Validate applies the persistence-schema checks. It returns a
// *ValidationError carrying a field->message map.
func (d Document) Validate() error {
	fields := map[string]string{}
	if d.UserID == "" {
		fields["user_id"] = "owner is required"
	}
	if d.FileName == "" {
		fields["file_name"] = "file name is required"
	}
	if d.SizeBytes < 0 {
		fields["size_bytes"] = "size must not be negative"
	}
	if d.SizeBytes > MaxFileSizeBytes {
		fields["size_bytes"] = "file exceeds the 50MB limit"
	}
	if len(d.ExtractedText) < 1 {
		fields["extracted_text"] = "extracted text must not be empty"
	}
	switch d.ExtractionMethod {
	case MethodNative, MethodOCR:
	default:
		fields["extraction_method"] = "unknown extraction method"
	}
	if d.ProcessingSeconds != nil && *d.ProcessingSeconds < 0 {
		fields["processing_seconds"] = "processing time must not be negative"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
