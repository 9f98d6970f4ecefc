package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of DocumentsRepo.
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

// Create stores a new document.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = doc
	return nil
}

// ListByUser returns documents for a user, newest first, without summaries.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	docs := make([]Document, 0)
	for _, d := range r.data {
		if d.UserID == userID {
			d.Summary = ""
			docs = append(docs, d)
		}
	}
	r.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})
	return docs, nil
}

// GetByID returns a document regardless of owner.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// UpdateAudioURL overwrites the audio URL of a document the user owns.
func (r *MemoryRepo) UpdateAudioURL(ctx context.Context, id, userID, audioURL string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[id]
	if !ok || doc.UserID != userID {
		return Document{}, ErrNotFound
	}
	doc.AudioURL = audioURL
	r.data[id] = doc
	return doc, nil
}

// Delete removes a document the user owns and returns its last state.
func (r *MemoryRepo) Delete(ctx context.Context, id, userID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[id]
	if !ok || doc.UserID != userID {
		return Document{}, ErrNotFound
	}
	delete(r.data, id)
	return doc, nil
}

// UpdateSummary stores the pipeline output.
func (r *MemoryRepo) UpdateSummary(ctx context.Context, id, summary string, status Status, processedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	doc.Summary = summary
	doc.Status = status
	doc.ProcessedAt = &processedAt
	r.data[id] = doc
	return nil
}

// SetStatus moves a document to a new pipeline status.
func (r *MemoryRepo) SetStatus(ctx context.Context, id string, status Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	doc.Status = status
	r.data[id] = doc
	return nil
}

var _ DocumentsRepo = (*MemoryRepo)(nil)
