package documents

import (
	"context"
	"time"
)

// DocumentsRepo defines persistence operations for documents.
// Owner-scoped mutations match on (id, userID) in a single statement.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	// ListByUser returns the owner's documents newest first. Summary is not loaded.
	ListByUser(ctx context.Context, userID string) ([]Document, error)
	GetByID(ctx context.Context, id string) (Document, error)
	UpdateAudioURL(ctx context.Context, id, userID, audioURL string) (Document, error)
	Delete(ctx context.Context, id, userID string) (Document, error)
	UpdateSummary(ctx context.Context, id, summary string, status Status, processedAt time.Time) error
	SetStatus(ctx context.Context, id string, status Status) error
}
