package documents

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"document-backend/internal/shared/telemetry"
)

// recentWindow is the trailing window counted as "recent" in statistics.
const recentWindow = 7 * 24 * time.Hour

// Service contains business logic for stored documents.
type Service struct {
	Repo Repo
	Log  *telemetry.Logger

	now func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo, log *telemetry.Logger) *Service {
	return &Service{Repo: repo, Log: log, now: func() time.Time { return time.Now().UTC() }}
}

// List returns a filtered page of the user's active documents.
func (s *Service) List(ctx context.Context, userID string, q ListQuery) (ListResponse, error) {
	page, size := normalizePage(q.Page, q.PageSize)
	docs, total, err := s.Repo.ListByOwner(ctx, userID, q)
	if err != nil {
		return ListResponse{}, err
	}
	items := make([]ListItemResponse, 0, len(docs))
	for _, doc := range docs {
		items = append(items, toListItem(doc))
	}
	return ListResponse{Results: items, Pagination: paginationFor(page, size, total)}, nil
}

// Detail returns one of the user's active documents with its full text.
func (s *Service) Detail(ctx context.Context, userID, docID string) (DetailResponse, error) {
	doc, err := s.Repo.GetOwned(ctx, userID, docID)
	if err != nil {
		return DetailResponse{}, err
	}
	return toDetail(doc), nil
}

// GlobalDetail returns any active document regardless of owner.
func (s *Service) GlobalDetail(ctx context.Context, docID string) (DetailResponse, error) {
	doc, err := s.Repo.GetActive(ctx, docID)
	if err != nil {
		return DetailResponse{}, err
	}
	return toDetail(doc), nil
}

// Search runs a substring search over extracted text and decorates each hit
// with a relevance fragment. The personal scope is the default; global
// searches span all owners. A blank term fails before touching the store.
func (s *Service) Search(ctx context.Context, userID string, global bool, term string, q SearchQuery) (SearchResponse, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return SearchResponse{}, ErrMissingQuery
	}

	q.Term = term
	if !global {
		q.OwnerID = userID
	} else {
		q.OwnerID = ""
	}
	page, size := normalizePage(q.Page, q.PageSize)

	docs, total, err := s.Repo.Search(ctx, q)
	if err != nil {
		return SearchResponse{}, err
	}

	results := make([]SearchResultResponse, 0, len(docs))
	for _, doc := range docs {
		results = append(results, toSearchResult(doc, term))
	}
	return SearchResponse{
		Results:    results,
		Pagination: paginationFor(page, size, total),
		Search:     SearchEcho{Term: term, Global: global, ResultsFound: total},
	}, nil
}

// Delete soft-deletes one of the user's documents. Deleting an already
// deleted document succeeds again and refreshes the deletion timestamp.
func (s *Service) Delete(ctx context.Context, userID, username, docID string) (DeleteResponse, error) {
	if err := s.Repo.SoftDelete(ctx, userID, docID, s.now()); err != nil {
		return DeleteResponse{}, err
	}
	doc, err := s.Repo.GetAny(ctx, docID)
	if err != nil {
		return DeleteResponse{}, err
	}
	s.log().Info("document soft-deleted", map[string]any{
		"user":        username,
		"document_id": doc.ID,
		"file_name":   doc.FileName,
	})
	return DeleteResponse{
		Success:         true,
		Message:         fmt.Sprintf("Document %q deleted successfully", doc.FileName),
		DeletedDocument: DeletedDocument{ID: doc.ID, FileName: doc.FileName},
	}, nil
}

// Restore clears the deletion state of a document. Administrative operation.
func (s *Service) Restore(ctx context.Context, username, docID string) (DetailResponse, error) {
	if err := s.Repo.Restore(ctx, docID); err != nil {
		return DetailResponse{}, err
	}
	doc, err := s.Repo.GetAny(ctx, docID)
	if err != nil {
		return DetailResponse{}, err
	}
	s.log().Info("document restored", map[string]any{
		"user":        username,
		"document_id": doc.ID,
		"file_name":   doc.FileName,
	})
	return toDetail(doc), nil
}

// HardDelete removes a document permanently. Administrative operation.
func (s *Service) HardDelete(ctx context.Context, username, docID string) (DeleteResponse, error) {
	doc, err := s.Repo.GetAny(ctx, docID)
	if err != nil {
		return DeleteResponse{}, err
	}
	if err := s.Repo.HardDelete(ctx, docID); err != nil {
		return DeleteResponse{}, err
	}
	s.log().Warn("document permanently deleted", map[string]any{
		"user":        username,
		"document_id": doc.ID,
		"file_name":   doc.FileName,
	})
	return DeleteResponse{
		Success:         true,
		Message:         fmt.Sprintf("Document %q permanently deleted", doc.FileName),
		DeletedDocument: DeletedDocument{ID: doc.ID, FileName: doc.FileName},
	}, nil
}

// Stats aggregates the user's active documents, counting the trailing seven
// days inclusively and rounding the average processing time to two decimals.
func (s *Service) Stats(ctx context.Context, userID, username string) (StatsResponse, error) {
	since := s.now().Add(-recentWindow)
	stats, err := s.Repo.Stats(ctx, userID, since)
	if err != nil {
		return StatsResponse{}, err
	}
	stats.AvgProcessingSeconds = math.Round(stats.AvgProcessingSeconds*100) / 100
	return toStatsResponse(stats, username), nil
}

func (s *Service) log() *telemetry.Logger {
	if s.Log != nil {
		return s.Log
	}
	return telemetry.Default()
}
