package summaries

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docsum-backend/internal/summarize"
)

// TextSource turns a stored document URL into plain text.
type TextSource interface {
	Text(ctx context.Context, url string) (string, error)
}

var (
	ErrExtract   = errors.New("extract document text")
	ErrSummarize = errors.New("summarize document")
)

// Service runs extraction followed by summarization.
type Service struct {
	Source     TextSource
	Summarizer summarize.Summarizer
}

// Generate produces a markdown summary for the document at fileURL.
// Failures wrap ErrExtract or ErrSummarize so callers can tell the stages apart.
func (s *Service) Generate(ctx context.Context, fileURL string) (string, error) {
	text, err := s.Source.Text(ctx, fileURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtract, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty text", ErrExtract)
	}

	summary, err := s.Summarizer.Summarize(ctx, text)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSummarize, err)
	}
	return summary, nil
}
