package summarize

import (
	"context"
	_ "embed"
	"errors"
	"regexp"
	"strings"
)

// Summarizer turns extracted document text into a markdown summary.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

var (
	// ErrNotImplemented is returned by the placeholder client.
	ErrNotImplemented = errors.New("summarizer not configured")
	ErrEmptySummary   = errors.New("summarizer returned empty content")
	ErrEmptyInput     = errors.New("document text is empty")
)

//go:embed prompts/analyst.txt
var analystPrompt string

const requestLead = "Please provide a comprehensive summary of the following document. " +
	"Focus on the main points, key insights, and important details. " +
	"Make the summary clear and well-structured:"

// SystemPrompt returns the analyst instructions sent ahead of the document.
func SystemPrompt() string {
	return strings.TrimSpace(analystPrompt)
}

// UserPrompt wraps the document text with the summary request.
func UserPrompt(text string) string {
	return SystemPrompt() + "\n\n" + requestLead + "\n\n" + text
}

var titleLine = regexp.MustCompile(`(?m)^#\s+.+$`)

// TrimToTitle drops any preamble the model wrote before the first "# " title.
// Output without a title is only trimmed.
func TrimToTitle(raw string) string {
	loc := titleLine.FindStringIndex(raw)
	if loc == nil {
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(raw[loc[0]:])
}

// PlaceholderClient is used when no provider is configured.
type PlaceholderClient struct{}

// Summarize returns ErrNotImplemented.
func (PlaceholderClient) Summarize(ctx context.Context, text string) (string, error) {
	return "", ErrNotImplemented
}
