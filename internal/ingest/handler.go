package ingest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"document-backend/internal/documents"
	"document-backend/internal/shared/server/middleware"
	"document-backend/internal/shared/server/respond"
)

// Handler wires the upload endpoint to the ingestion service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the upload route. The group should carry the rate
// limit for OCR-heavy processing.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
}

// UploadResponse confirms a persisted document.
type UploadResponse struct {
	Success           bool      `json:"success"`
	DocumentID        string    `json:"document_id"`
	FileName          string    `json:"file_name"`
	SizeBytes         int64     `json:"size_bytes"`
	SizeHuman         string    `json:"size_human"`
	ExtractedText     string    `json:"extracted_text"`
	ExtractionMethod  string    `json:"extraction_method"`
	ProcessingSeconds *float64  `json:"processing_seconds"`
	CreatedAt         time.Time `json:"created_at"`
}

func (h *Handler) upload(c *gin.Context) {
	actor := Identity{
		UserID:   middleware.UserIDFromContext(c),
		Username: middleware.UsernameFromContext(c),
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "missing_file", ErrMissingFile.Error(), nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "missing_file", "unable to read uploaded file", nil)
		return
	}
	defer file.Close()

	doc, err := h.Svc.Process(c.Request.Context(), actor, fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		respondIngestError(c, err)
		return
	}

	respond.JSON(c, http.StatusCreated, UploadResponse{
		Success:           true,
		DocumentID:        doc.ID,
		FileName:          doc.FileName,
		SizeBytes:         doc.SizeBytes,
		SizeHuman:         doc.HumanSize(),
		ExtractedText:     doc.ExtractedText,
		ExtractionMethod:  doc.ExtractionMethod,
		ProcessingSeconds: doc.ProcessingSeconds,
		CreatedAt:         doc.CreatedAt,
	})
}

func respondIngestError(c *gin.Context, err error) {
	var tooLarge *FileTooLargeError
	var validation *documents.ValidationError
	switch {
	case errors.Is(err, ErrMissingFile):
		respond.Error(c, http.StatusBadRequest, "missing_file", err.Error(), nil)
	case errors.Is(err, ErrUnsupportedFormat):
		respond.Error(c, http.StatusBadRequest, "unsupported_format", err.Error(), nil)
	case errors.Is(err, ErrInvalidFileName):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.As(err, &tooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", tooLarge.Error(), nil)
	case errors.Is(err, ErrInsufficientText):
		respond.Error(c, http.StatusUnprocessableEntity, "insufficient_text", err.Error(), nil)
	case errors.As(err, &validation):
		details := make(map[string]any, len(validation.Fields))
		for field, msg := range validation.Fields {
			details[field] = msg
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "document validation failed", details)
	default:
		respond.Error(c, http.StatusInternalServerError, "processing_error", "failed to process the document", nil)
	}
}
