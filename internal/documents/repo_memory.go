package documents

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo for local runs and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document // id -> document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Document),
	}
}

// Create stores a document.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = doc
	return nil
}

// GetOwned returns an active document belonging to userID.
func (r *MemoryRepo) GetOwned(ctx context.Context, userID, docID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[docID]
	if !ok || doc.Deleted || doc.UserID != userID {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// GetActive returns an active document regardless of owner.
func (r *MemoryRepo) GetActive(ctx context.Context, docID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[docID]
	if !ok || doc.Deleted {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// GetAny returns a document in any state.
func (r *MemoryRepo) GetAny(ctx context.Context, docID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[docID]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// ListByOwner returns a filtered page of a user's active documents.
func (r *MemoryRepo) ListByOwner(ctx context.Context, userID string, q ListQuery) ([]Document, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	var matched []Document
	for _, doc := range r.data {
		if doc.UserID != userID || doc.Deleted {
			continue
		}
		if q.Method != "" && doc.ExtractionMethod != q.Method {
			continue
		}
		if q.FileName != "" && !strings.Contains(strings.ToLower(doc.FileName), strings.ToLower(q.FileName)) {
			continue
		}
		if q.CreatedFrom != nil && doc.CreatedAt.Before(*q.CreatedFrom) {
			continue
		}
		if q.CreatedTo != nil && doc.CreatedAt.After(*q.CreatedTo) {
			continue
		}
		matched = append(matched, doc)
	}
	r.mu.RUnlock()

	sortDocuments(matched, q.OrderBy, q.Descending)
	total := len(matched)
	return pageOf(matched, q.Page, q.PageSize), total, nil
}

// Search returns a page of active documents containing the term.
func (r *MemoryRepo) Search(ctx context.Context, q SearchQuery) ([]Document, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	term := strings.ToLower(q.Term)

	r.mu.RLock()
	var matched []Document
	for _, doc := range r.data {
		if doc.Deleted {
			continue
		}
		if q.OwnerID != "" && doc.UserID != q.OwnerID {
			continue
		}
		if !strings.Contains(strings.ToLower(doc.ExtractedText), term) {
			continue
		}
		matched = append(matched, doc)
	}
	r.mu.RUnlock()

	sortDocuments(matched, q.OrderBy, q.Descending)
	total := len(matched)
	return pageOf(matched, q.Page, q.PageSize), total, nil
}

// SoftDelete marks an owned document as deleted. Repeated deletion refreshes
// the deletion timestamp.
func (r *MemoryRepo) SoftDelete(ctx context.Context, userID, docID string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[docID]
	if !ok || doc.UserID != userID {
		return ErrNotFound
	}
	doc.Deleted = true
	doc.DeletedAt = &at
	doc.UpdatedAt = at
	r.data[docID] = doc
	return nil
}

// Restore clears the deletion state of a deleted document.
func (r *MemoryRepo) Restore(ctx context.Context, docID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[docID]
	if !ok || !doc.Deleted {
		return ErrNotFound
	}
	doc.Deleted = false
	doc.DeletedAt = nil
	doc.UpdatedAt = time.Now().UTC()
	r.data[docID] = doc
	return nil
}

// HardDelete removes a document permanently.
func (r *MemoryRepo) HardDelete(ctx context.Context, docID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[docID]; !ok {
		return ErrNotFound
	}
	delete(r.data, docID)
	return nil
}

// Stats aggregates a user's active documents.
func (r *MemoryRepo) Stats(ctx context.Context, userID string, recentSince time.Time) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats Stats
	byMethod := map[string]int64{}
	var secondsSum float64
	var secondsCount int64
	for _, doc := range r.data {
		if doc.UserID != userID || doc.Deleted {
			continue
		}
		stats.TotalDocuments++
		stats.TotalSizeBytes += doc.SizeBytes
		byMethod[doc.ExtractionMethod]++
		if doc.ProcessingSeconds != nil {
			secondsSum += *doc.ProcessingSeconds
			secondsCount++
		}
		if !doc.CreatedAt.Before(recentSince) {
			stats.RecentCount++
		}
	}
	if secondsCount > 0 {
		stats.AvgProcessingSeconds = secondsSum / float64(secondsCount)
	}

	methods := make([]string, 0, len(byMethod))
	for m := range byMethod {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	for _, m := range methods {
		stats.ByMethod = append(stats.ByMethod, MethodCount{Method: m, Count: byMethod[m]})
	}
	return stats, nil
}

func sortDocuments(docs []Document, orderBy string, descending bool) {
	less := func(a, b Document) bool { return a.CreatedAt.Before(b.CreatedAt) }
	switch orderColumn(orderBy) {
	case "file_name":
		less = func(a, b Document) bool { return a.FileName < b.FileName }
	case "size_bytes":
		less = func(a, b Document) bool { return a.SizeBytes < b.SizeBytes }
	}
	sort.SliceStable(docs, func(i, j int) bool {
		if descending {
			return less(docs[j], docs[i])
		}
		return less(docs[i], docs[j])
	})
}

func pageOf(docs []Document, page, size int) []Document {
	page, size = normalizePage(page, size)
	start := (page - 1) * size
	if start >= len(docs) {
		return []Document{}
	}
	end := start + size
	if end > len(docs) {
		end = len(docs)
	}
	return docs[start:end]
}

var _ Repo = (*MemoryRepo)(nil)
