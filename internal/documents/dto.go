package documents

import (
	"time"

	"document-backend/internal/shared/util"
)

// OwnerInfo is the document owner's public identity.
type OwnerInfo struct {
	Username string `json:"username"`
}

// ListItemResponse is the compact representation used by listings.
type ListItemResponse struct {
	ID                string    `json:"id"`
	FileName          string    `json:"file_name"`
	SizeBytes         int64     `json:"size_bytes"`
	SizeHuman         string    `json:"size_human"`
	Summary           string    `json:"summary"`
	ExtractionMethod  string    `json:"extraction_method"`
	ProcessingSeconds *float64  `json:"processing_seconds"`
	CreatedAt         time.Time `json:"created_at"`
	Owner             OwnerInfo `json:"owner"`
}

// DetailResponse carries the full extracted text of one document.
type DetailResponse struct {
	ID                string     `json:"id"`
	FileName          string     `json:"file_name"`
	SizeBytes         int64      `json:"size_bytes"`
	SizeHuman         string     `json:"size_human"`
	ExtractedText     string     `json:"extracted_text"`
	Summary           string     `json:"summary"`
	ExtractionMethod  string     `json:"extraction_method"`
	ProcessingSeconds *float64   `json:"processing_seconds"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Deleted           bool       `json:"deleted"`
	DeletedAt         *time.Time `json:"deleted_at,omitempty"`
	Owner             OwnerInfo  `json:"owner"`
}

// SearchResultResponse is one search hit with its relevance fragment.
type SearchResultResponse struct {
	ID               string    `json:"id"`
	FileName         string    `json:"file_name"`
	SizeHuman        string    `json:"size_human"`
	ExtractionMethod string    `json:"extraction_method"`
	CreatedAt        time.Time `json:"created_at"`
	Owner            OwnerInfo `json:"owner"`
	Fragment         string    `json:"fragment"`
}

// Pagination is the envelope metadata shared by paged endpoints.
type Pagination struct {
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
	TotalPages  int  `json:"total_pages"`
	CurrentPage int  `json:"current_page"`
	TotalCount  int  `json:"total_count"`
	PageSize    int  `json:"page_size"`
}

// ListResponse is the paged listing envelope.
type ListResponse struct {
	Results    []ListItemResponse `json:"results"`
	Pagination Pagination         `json:"pagination"`
}

// SearchEcho restates the executed search.
type SearchEcho struct {
	Term         string `json:"term"`
	Global       bool   `json:"global"`
	ResultsFound int    `json:"results_found"`
}

// SearchResponse is the paged search envelope.
type SearchResponse struct {
	Results    []SearchResultResponse `json:"results"`
	Pagination Pagination             `json:"pagination"`
	Search     SearchEcho             `json:"search"`
}

// DeletedDocument identifies the document a delete acted on.
type DeletedDocument struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
}

// DeleteResponse confirms a soft delete.
type DeleteResponse struct {
	Success         bool            `json:"success"`
	Message         string          `json:"message"`
	DeletedDocument DeletedDocument `json:"deleted_document"`
}

// StatsTotals is the general-statistics block.
type StatsTotals struct {
	TotalDocuments       int64   `json:"total_documents"`
	TotalSizeBytes       int64   `json:"total_size_bytes"`
	TotalSizeHuman       string  `json:"total_size_human"`
	AvgProcessingSeconds float64 `json:"avg_processing_seconds"`
}

// StatsResponse is the statistics envelope.
type StatsResponse struct {
	Totals          StatsTotals   `json:"totals"`
	ByMethod        []MethodCount `json:"by_method"`
	RecentLast7Days int64         `json:"recent_last_7_days"`
	Username        string        `json:"username"`
}

func toListItem(doc Document) ListItemResponse {
	return ListItemResponse{
		ID:                doc.ID,
		FileName:          doc.FileName,
		SizeBytes:         doc.SizeBytes,
		SizeHuman:         doc.HumanSize(),
		Summary:           Summary(doc.ExtractedText),
		ExtractionMethod:  doc.ExtractionMethod,
		ProcessingSeconds: doc.ProcessingSeconds,
		CreatedAt:         doc.CreatedAt,
		Owner:             OwnerInfo{Username: doc.OwnerUsername},
	}
}

func toDetail(doc Document) DetailResponse {
	return DetailResponse{
		ID:                doc.ID,
		FileName:          doc.FileName,
		SizeBytes:         doc.SizeBytes,
		SizeHuman:         doc.HumanSize(),
		ExtractedText:     doc.ExtractedText,
		Summary:           Summary(doc.ExtractedText),
		ExtractionMethod:  doc.ExtractionMethod,
		ProcessingSeconds: doc.ProcessingSeconds,
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
		Deleted:           doc.Deleted,
		DeletedAt:         doc.DeletedAt,
		Owner:             OwnerInfo{Username: doc.OwnerUsername},
	}
}

func toSearchResult(doc Document, term string) SearchResultResponse {
	return SearchResultResponse{
		ID:               doc.ID,
		FileName:         doc.FileName,
		SizeHuman:        doc.HumanSize(),
		ExtractionMethod: doc.ExtractionMethod,
		CreatedAt:        doc.CreatedAt,
		Owner:            OwnerInfo{Username: doc.OwnerUsername},
		Fragment:         Fragment(doc.ExtractedText, term),
	}
}

func toStatsResponse(stats Stats, username string) StatsResponse {
	byMethod := stats.ByMethod
	if byMethod == nil {
		byMethod = []MethodCount{}
	}
	return StatsResponse{
		Totals: StatsTotals{
			TotalDocuments:       stats.TotalDocuments,
			TotalSizeBytes:       stats.TotalSizeBytes,
			TotalSizeHuman:       util.HumanSize(stats.TotalSizeBytes),
			AvgProcessingSeconds: stats.AvgProcessingSeconds,
		},
		ByMethod:        byMethod,
		RecentLast7Days: stats.RecentCount,
		Username:        username,
	}
}

func paginationFor(page, size, total int) Pagination {
	totalPages := total / size
	if total%size != 0 {
		totalPages++
	}
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return Pagination{
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
		TotalPages:  totalPages,
		CurrentPage: page,
		TotalCount:  total,
		PageSize:    size,
	}
}
