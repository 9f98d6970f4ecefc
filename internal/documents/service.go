package documents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobPublisher hands a document to the background summarizer.
type JobPublisher interface {
	PublishProcess(ctx context.Context, documentID, requestID string) error
}

// Service contains business logic for documents.
type Service struct {
	Repo      DocumentsRepo
	Publisher JobPublisher
	Now       func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// List returns the caller's documents newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Document, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID)
}

// FindByID returns any document by id. Malformed ids are reported as not found.
func (s *Service) FindByID(ctx context.Context, id string) (Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Document{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}

// Create records a document whose summary was produced by the caller.
// ProcessedAt stays unset; only the worker pipeline stamps it.
func (s *Service) Create(ctx context.Context, userID, fileName, fileURL, summary string) (Document, error) {
	fileName = strings.TrimSpace(fileName)
	fileURL = strings.TrimSpace(fileURL)
	if userID == "" || fileName == "" || fileURL == "" || strings.TrimSpace(summary) == "" {
		return Document{}, ErrInvalidInput
	}

	now := s.now()
	doc := Document{
		ID:         uuid.NewString(),
		UserID:     userID,
		FileName:   fileName,
		FileURL:    fileURL,
		Summary:    summary,
		Status:     StatusCompleted,
		UploadedAt: now,
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, fmt.Errorf("create document: %w", err)
	}
	return doc, nil
}

// Enqueue records a pending document and publishes it for summarization.
func (s *Service) Enqueue(ctx context.Context, userID, fileName, fileURL, requestID string) (Document, error) {
	if s.Publisher == nil {
		return Document{}, ErrQueueMissing
	}
	fileName = strings.TrimSpace(fileName)
	fileURL = strings.TrimSpace(fileURL)
	if userID == "" || fileName == "" || fileURL == "" {
		return Document{}, ErrInvalidInput
	}

	doc := Document{
		ID:         uuid.NewString(),
		UserID:     userID,
		FileName:   fileName,
		FileURL:    fileURL,
		Status:     StatusPending,
		UploadedAt: s.now(),
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, fmt.Errorf("create document: %w", err)
	}
	if err := s.Publisher.PublishProcess(ctx, doc.ID, requestID); err != nil {
		// Leave the row visible as failed rather than stuck in pending.
		_ = s.Repo.SetStatus(ctx, doc.ID, StatusError)
		return Document{}, fmt.Errorf("publish document %s: %w", doc.ID, err)
	}
	return doc, nil
}

// UpdateAudio stores the generated narration URL on an owned document.
func (s *Service) UpdateAudio(ctx context.Context, id, userID, audioURL string) (Document, error) {
	if strings.TrimSpace(audioURL) == "" {
		return Document{}, ErrInvalidInput
	}
	if _, err := uuid.Parse(id); err != nil {
		return Document{}, ErrNotFound
	}
	return s.Repo.UpdateAudioURL(ctx, id, userID, strings.TrimSpace(audioURL))
}

// Delete removes an owned document and returns its snapshot.
func (s *Service) Delete(ctx context.Context, id, userID string) (Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Document{}, ErrNotFound
	}
	return s.Repo.Delete(ctx, id, userID)
}

// MarkProcessing flags a pending document as picked up by a worker.
func (s *Service) MarkProcessing(ctx context.Context, id string) error {
	return s.Repo.SetStatus(ctx, id, StatusProcessing)
}

// Complete stores the summary and marks the document completed.
func (s *Service) Complete(ctx context.Context, id, summary string) error {
	return s.Repo.UpdateSummary(ctx, id, summary, StatusCompleted, s.now())
}

// Fail marks the document as errored.
func (s *Service) Fail(ctx context.Context, id string) error {
	return s.Repo.UpdateSummary(ctx, id, "", StatusError, s.now())
}
