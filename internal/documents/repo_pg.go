package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, user_id, file_name, file_url, summary, audio_url, status, uploaded_at, processed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var status string
	var processedAt sql.NullTime
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FileName,
		&doc.FileURL,
		&doc.Summary,
		&doc.AudioURL,
		&status,
		&doc.UploadedAt,
		&processedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	doc.Status = Status(status)
	if processedAt.Valid {
		t := processedAt.Time
		doc.ProcessedAt = &t
	}
	return doc, nil
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (` + documentColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	var processedAt sql.NullTime
	if doc.ProcessedAt != nil {
		processedAt = sql.NullTime{Time: *doc.ProcessedAt, Valid: true}
	}
	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.UserID,
		doc.FileName,
		doc.FileURL,
		doc.Summary,
		doc.AudioURL,
		string(doc.Status),
		doc.UploadedAt,
		processedAt,
	)
	return err
}

// ListByUser returns a user's documents newest first. The summary column is
// not selected.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	const query = `
SELECT id, user_id, file_name, file_url, '' AS summary, audio_url, status, uploaded_at, processed_at
FROM documents
WHERE user_id = $1
ORDER BY uploaded_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// GetByID fetches a document by ID without an owner check.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE id = $1`
	return scanDocument(r.DB.QueryRowContext(ctx, query, id))
}

// UpdateAudioURL sets audio_url when the row matches both id and owner.
func (r *PGRepo) UpdateAudioURL(ctx context.Context, id, userID, audioURL string) (Document, error) {
	const query = `
UPDATE documents
SET audio_url = $1
WHERE id = $2 AND user_id = $3
RETURNING ` + documentColumns
	return scanDocument(r.DB.QueryRowContext(ctx, query, audioURL, id, userID))
}

// Delete removes the row matching id and owner and returns it.
func (r *PGRepo) Delete(ctx context.Context, id, userID string) (Document, error) {
	const query = `
DELETE FROM documents
WHERE id = $1 AND user_id = $2
RETURNING ` + documentColumns
	return scanDocument(r.DB.QueryRowContext(ctx, query, id, userID))
}

// UpdateSummary stores the summary produced by the pipeline.
func (r *PGRepo) UpdateSummary(ctx context.Context, id, summary string, status Status, processedAt time.Time) error {
	const query = `
UPDATE documents
SET summary = $1, status = $2, processed_at = $3
WHERE id = $4`
	res, err := r.DB.ExecContext(ctx, query, summary, string(status), processedAt, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// SetStatus updates the pipeline status.
func (r *PGRepo) SetStatus(ctx context.Context, id string, status Status) error {
	const query = `
UPDATE documents
SET status = $1
WHERE id = $2`
	res, err := r.DB.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ DocumentsRepo = (*PGRepo)(nil)
