package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const docColumns = `d.id, d.user_id, u.username, d.file_name, d.size_bytes, d.extracted_text, d.extraction_method, d.processing_seconds, d.created_at, d.updated_at, d.deleted, d.deleted_at`

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    user_id,
    file_name,
    size_bytes,
    extracted_text,
    extraction_method,
    processing_seconds,
    created_at,
    updated_at,
    deleted,
    deleted_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, NULL)`

	var seconds sql.NullFloat64
	if doc.ProcessingSeconds != nil {
		seconds = sql.NullFloat64{Float64: *doc.ProcessingSeconds, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.UserID,
		doc.FileName,
		doc.SizeBytes,
		doc.ExtractedText,
		doc.ExtractionMethod,
		seconds,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

// GetOwned fetches an active document belonging to userID.
func (r *PGRepo) GetOwned(ctx context.Context, userID, docID string) (Document, error) {
	query := `
SELECT ` + docColumns + `
FROM documents d
JOIN users u ON u.id = d.user_id
WHERE d.user_id = $1 AND d.id = $2 AND d.deleted = FALSE
LIMIT 1`
	return r.queryOne(ctx, query, userID, docID)
}

// GetActive fetches an active document regardless of owner.
func (r *PGRepo) GetActive(ctx context.Context, docID string) (Document, error) {
	query := `
SELECT ` + docColumns + `
FROM documents d
JOIN users u ON u.id = d.user_id
WHERE d.id = $1 AND d.deleted = FALSE
LIMIT 1`
	return r.queryOne(ctx, query, docID)
}

// GetAny fetches a document in any state, deleted included.
func (r *PGRepo) GetAny(ctx context.Context, docID string) (Document, error) {
	query := `
SELECT ` + docColumns + `
FROM documents d
JOIN users u ON u.id = d.user_id
WHERE d.id = $1
LIMIT 1`
	return r.queryOne(ctx, query, docID)
}

// ListByOwner returns a filtered page of a user's active documents plus the
// total count matching the filters.
func (r *PGRepo) ListByOwner(ctx context.Context, userID string, q ListQuery) ([]Document, int, error) {
	page, size := normalizePage(q.Page, q.PageSize)

	where := []string{"d.user_id = $1", "d.deleted = FALSE"}
	args := []any{userID}
	if q.Method != "" {
		args = append(args, q.Method)
		where = append(where, fmt.Sprintf("d.extraction_method = $%d", len(args)))
	}
	if q.FileName != "" {
		args = append(args, "%"+escapeLike(q.FileName)+"%")
		where = append(where, fmt.Sprintf("d.file_name ILIKE $%d", len(args)))
	}
	if q.CreatedFrom != nil {
		args = append(args, *q.CreatedFrom)
		where = append(where, fmt.Sprintf("d.created_at >= $%d", len(args)))
	}
	if q.CreatedTo != nil {
		args = append(args, *q.CreatedTo)
		where = append(where, fmt.Sprintf("d.created_at <= $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM documents d WHERE " + cond
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}
	args = append(args, size, (page-1)*size)
	query := fmt.Sprintf(`
SELECT %s
FROM documents d
JOIN users u ON u.id = d.user_id
WHERE %s
ORDER BY d.%s %s
LIMIT $%d OFFSET $%d`, docColumns, cond, orderColumn(q.OrderBy), dir, len(args)-1, len(args))

	docs, err := r.queryMany(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// Search returns a page of active documents whose extracted text contains the
// term, scoped to one owner when OwnerID is set.
func (r *PGRepo) Search(ctx context.Context, q SearchQuery) ([]Document, int, error) {
	page, size := normalizePage(q.Page, q.PageSize)

	where := []string{"d.deleted = FALSE"}
	args := []any{"%" + escapeLike(q.Term) + "%"}
	where = append(where, "d.extracted_text ILIKE $1")
	if q.OwnerID != "" {
		args = append(args, q.OwnerID)
		where = append(where, fmt.Sprintf("d.user_id = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM documents d WHERE " + cond
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}
	args = append(args, size, (page-1)*size)
	query := fmt.Sprintf(`
SELECT %s
FROM documents d
JOIN users u ON u.id = d.user_id
WHERE %s
ORDER BY d.%s %s
LIMIT $%d OFFSET $%d`, docColumns, cond, orderColumn(q.OrderBy), dir, len(args)-1, len(args))

	docs, err := r.queryMany(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// SoftDelete flags an owned document as deleted and stamps deleted_at.
// Re-deleting an already deleted document refreshes the timestamp.
func (r *PGRepo) SoftDelete(ctx context.Context, userID, docID string, at time.Time) error {
	const query = `
UPDATE documents
SET deleted = TRUE, deleted_at = $1, updated_at = $1
WHERE user_id = $2 AND id = $3`
	res, err := r.DB.ExecContext(ctx, query, at, userID, docID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Restore clears the deletion flag and timestamp on a document.
func (r *PGRepo) Restore(ctx context.Context, docID string) error {
	const query = `
UPDATE documents
SET deleted = FALSE, deleted_at = NULL, updated_at = NOW()
WHERE id = $1 AND deleted = TRUE`
	res, err := r.DB.ExecContext(ctx, query, docID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// HardDelete removes a document row permanently.
func (r *PGRepo) HardDelete(ctx context.Context, docID string) error {
	const query = `DELETE FROM documents WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, docID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates a user's active documents.
func (r *PGRepo) Stats(ctx context.Context, userID string, recentSince time.Time) (Stats, error) {
	var stats Stats

	const totals = `
SELECT COUNT(*),
       COALESCE(SUM(size_bytes), 0),
       COALESCE(AVG(processing_seconds), 0),
       COUNT(*) FILTER (WHERE created_at >= $2)
FROM documents
WHERE user_id = $1 AND deleted = FALSE`
	err := r.DB.QueryRowContext(ctx, totals, userID, recentSince).Scan(
		&stats.TotalDocuments,
		&stats.TotalSizeBytes,
		&stats.AvgProcessingSeconds,
		&stats.RecentCount,
	)
	if err != nil {
		return Stats{}, err
	}

	const byMethod = `
SELECT extraction_method, COUNT(*)
FROM documents
WHERE user_id = $1 AND deleted = FALSE
GROUP BY extraction_method
ORDER BY extraction_method`
	rows, err := r.DB.QueryContext(ctx, byMethod, userID)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var mc MethodCount
		if err := rows.Scan(&mc.Method, &mc.Count); err != nil {
			return Stats{}, err
		}
		stats.ByMethod = append(stats.ByMethod, mc)
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func (r *PGRepo) queryOne(ctx context.Context, query string, args ...any) (Document, error) {
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

func (r *PGRepo) queryMany(ctx context.Context, query string, args ...any) ([]Document, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var seconds sql.NullFloat64
	var deletedAt sql.NullTime
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.OwnerUsername,
		&doc.FileName,
		&doc.SizeBytes,
		&doc.ExtractedText,
		&doc.ExtractionMethod,
		&seconds,
		&doc.CreatedAt,
		&doc.UpdatedAt,
		&doc.Deleted,
		&deletedAt,
	)
	if err != nil {
		return Document{}, err
	}
	if seconds.Valid {
		doc.ProcessingSeconds = &seconds.Float64
	}
	if deletedAt.Valid {
		doc.DeletedAt = &deletedAt.Time
	}
	return doc, nil
}

// escapeLike neutralizes LIKE wildcards in user input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

var _ Repo = (*PGRepo)(nil)
