package documents

import (
	"context"
	"time"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// ListQuery selects and orders a page of a user's active documents.
type ListQuery struct {
	Method      string
	FileName    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	OrderBy     string
	Descending  bool
	Page        int
	PageSize    int
}

// SearchQuery is a substring search over extracted text. An empty OwnerID
// makes the search global (all owners, still excluding deleted documents).
type SearchQuery struct {
	Term       string
	OwnerID    string
	OrderBy    string
	Descending bool
	Page       int
	PageSize   int
}

// MethodCount is one bucket of the per-method distribution.
type MethodCount struct {
	Method string `json:"method"`
	Count  int64  `json:"count"`
}

// Stats aggregates a user's active documents.
type Stats struct {
	TotalDocuments       int64
	TotalSizeBytes       int64
	AvgProcessingSeconds float64
	ByMethod             []MethodCount
	RecentCount          int64
}

// Repo defines persistence operations for documents.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	// GetOwned returns an active document belonging to userID, or ErrNotFound.
	GetOwned(ctx context.Context, userID, docID string) (Document, error)
	// GetActive returns an active document regardless of owner (global scope).
	GetActive(ctx context.Context, docID string) (Document, error)
	// GetAny returns a document in any state; administrative paths only.
	GetAny(ctx context.Context, docID string) (Document, error)
	ListByOwner(ctx context.Context, userID string, q ListQuery) ([]Document, int, error)
	Search(ctx context.Context, q SearchQuery) ([]Document, int, error)
	SoftDelete(ctx context.Context, userID, docID string, at time.Time) error
	Restore(ctx context.Context, docID string) error
	HardDelete(ctx context.Context, docID string) error
	Stats(ctx context.Context, userID string, recentSince time.Time) (Stats, error)
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// orderColumn whitelists ordering fields; anything else falls back to the
// default creation-timestamp ordering.
func orderColumn(orderBy string) string {
	switch orderBy {
	case "file_name", "size_bytes", "created_at":
		return orderBy
	default:
		return "created_at"
	}
}
