package workerproc

import (
	"context"
	"fmt"
	"time"

	"docsum-backend/internal/documents"
	"docsum-backend/internal/shared/metrics"
	"docsum-backend/internal/shared/telemetry"
)

// SummaryGenerator produces a summary for a stored document.
type SummaryGenerator interface {
	Generate(ctx context.Context, fileURL string) (string, error)
}

// Pipeline moves a queued document through processing to completed or error.
type Pipeline struct {
	Docs      *documents.Service
	Summaries SummaryGenerator
}

// ProcessDocument summarizes documentID. Documents already completed are
// skipped so redelivered messages are harmless.
func (p *Pipeline) ProcessDocument(ctx context.Context, documentID string) error {
	doc, err := p.Docs.FindByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load document %s: %w", documentID, err)
	}
	if doc.Status == documents.StatusCompleted {
		telemetry.Info("document.process.skipped", map[string]any{
			"document_id": documentID,
			"status":      string(doc.Status),
		})
		return nil
	}

	if err := p.Docs.MarkProcessing(ctx, documentID); err != nil {
		return fmt.Errorf("mark processing %s: %w", documentID, err)
	}
	telemetry.Info("document.status", map[string]any{
		"document_id":       documentID,
		"status_transition": string(doc.Status) + "->" + string(documents.StatusProcessing),
	})

	start := time.Now()
	summary, genErr := p.Summaries.Generate(ctx, doc.FileURL)
	if genErr != nil {
		metrics.IncDocumentProcessed("error")
		if err := p.Docs.Fail(context.WithoutCancel(ctx), documentID); err != nil {
			telemetry.Error("document.fail.persist_failed", map[string]any{
				"document_id": documentID,
				"error":       err.Error(),
			})
		}
		telemetry.Error("document.status", map[string]any{
			"document_id":       documentID,
			"status_transition": string(documents.StatusProcessing) + "->" + string(documents.StatusError),
			"duration_ms":       time.Since(start).Milliseconds(),
			"error":             genErr.Error(),
		})
		return genErr
	}

	if err := p.Docs.Complete(ctx, documentID, summary); err != nil {
		metrics.IncDocumentProcessed("error")
		return fmt.Errorf("store summary %s: %w", documentID, err)
	}
	metrics.IncDocumentProcessed("completed")
	telemetry.Info("document.status", map[string]any{
		"document_id":       documentID,
		"status_transition": string(documents.StatusProcessing) + "->" + string(documents.StatusCompleted),
		"duration_ms":       time.Since(start).Milliseconds(),
		"summary_chars":     len(summary),
	})
	return nil
}

var _ Processor = (*Pipeline)(nil)
