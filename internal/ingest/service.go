package ingest

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"document-backend/internal/documents"
	"document-backend/internal/extract"
	"document-backend/internal/shared/telemetry"
	"document-backend/internal/shared/util"
)

// minExtractedChars is the minimum trimmed character count accepted for
// persistence.
const minExtractedChars = 10

// Extractor produces text from a PDF on disk.
type Extractor interface {
	Extract(ctx context.Context, path string) extract.Result
}

// Identity is the acting user carried through the workflow for auditing.
type Identity struct {
	UserID   string
	Username string
}

// Service runs the upload-to-persistence workflow.
type Service struct {
	Engine  Extractor
	Repo    documents.Repo
	Log     *telemetry.Logger
	TempDir string

	now func() time.Time
}

// NewService constructs a Service. An empty tempDir uses the system default.
func NewService(engine Extractor, repo documents.Repo, log *telemetry.Logger, tempDir string) *Service {
	return &Service{
		Engine:  engine,
		Repo:    repo,
		Log:     log,
		TempDir: tempDir,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Process validates the upload, extracts its text, and persists the result.
// The uploaded bytes live in a scoped temporary file that is removed on every
// exit path. Unexpected faults surface as *ProcessingError; nothing partial
// is ever persisted.
func (s *Service) Process(ctx context.Context, actor Identity, fileName string, size int64, r io.Reader) (doc documents.Document, err error) {
	log := s.log().With(map[string]any{
		"user":      actor.Username,
		"file_name": fileName,
	})

	defer func() {
		if rec := recover(); rec != nil {
			err = &ProcessingError{Cause: fmt.Errorf("panic: %v", rec)}
			log.Error("document processing panicked", map[string]any{"panic": fmt.Sprint(rec)})
		}
	}()

	if fileName == "" {
		log.Warn("upload rejected: no file", nil)
		return documents.Document{}, ErrMissingFile
	}
	if !strings.HasSuffix(strings.ToLower(fileName), ".pdf") {
		log.Warn("upload rejected: not a PDF", nil)
		return documents.Document{}, ErrUnsupportedFormat
	}
	fileName, err = util.SanitizeFileName(fileName)
	if err != nil {
		log.Warn("upload rejected: invalid file name", nil)
		return documents.Document{}, ErrInvalidFileName
	}
	if size > documents.MaxFileSizeBytes {
		log.Warn("upload rejected: file too large", map[string]any{"size_bytes": size})
		return documents.Document{}, &FileTooLargeError{SizeBytes: size}
	}

	tempPath, err := s.spool(r)
	if err != nil {
		log.Error("failed to stage upload", map[string]any{"error": err.Error()})
		return documents.Document{}, &ProcessingError{Cause: err}
	}
	defer func() {
		if removeErr := os.Remove(tempPath); removeErr != nil {
			log.Warn("failed to remove temp file", map[string]any{
				"path":  tempPath,
				"error": removeErr.Error(),
			})
		}
	}()

	start := time.Now()
	result := s.Engine.Extract(ctx, tempPath)
	elapsed := math.Round(time.Since(start).Seconds()*1000) / 1000

	text := strings.TrimSpace(result.Text)
	if utf8.RuneCountInString(text) < minExtractedChars {
		log.Warn("upload rejected: insufficient extracted text", map[string]any{
			"extracted_chars": utf8.RuneCountInString(text),
			"method":          result.Method,
		})
		return documents.Document{}, ErrInsufficientText
	}

	now := s.now()
	doc = documents.Document{
		ID:                uuid.NewString(),
		UserID:            actor.UserID,
		OwnerUsername:     actor.Username,
		FileName:          fileName,
		SizeBytes:         size,
		ExtractedText:     text,
		ExtractionMethod:  methodLabel(result.Method),
		ProcessingSeconds: &elapsed,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := doc.Validate(); err != nil {
		log.Warn("upload rejected: document validation failed", map[string]any{"error": err.Error()})
		return documents.Document{}, err
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		log.Error("failed to persist document", map[string]any{"error": err.Error()})
		return documents.Document{}, &ProcessingError{Cause: err}
	}

	log.Info("document processed", map[string]any{
		"document_id":        doc.ID,
		"method":             doc.ExtractionMethod,
		"size_bytes":         doc.SizeBytes,
		"processing_seconds": elapsed,
	})
	return doc, nil
}

// spool streams the upload into a temporary PDF file and returns its path.
func (s *Service) spool(r io.Reader) (string, error) {
	tempFile, err := os.CreateTemp(s.TempDir, "upload-*.pdf")
	if err != nil {
		return "", err
	}
	path := tempFile.Name()
	if _, err := io.Copy(tempFile, r); err != nil {
		tempFile.Close()
		os.Remove(path)
		return "", err
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// methodLabel maps engine stage names onto the stored method labels. Unknown
// stages count as native.
func methodLabel(engineMethod string) string {
	if engineMethod == extract.MethodOCR {
		return documents.MethodOCR
	}
	return documents.MethodNative
}

func (s *Service) log() *telemetry.Logger {
	if s.Log != nil {
		return s.Log
	}
	return telemetry.Default()
}
