package workerproc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsum-backend/internal/documents"
)

type stubGenerator struct {
	summary string
	err     error
	calls   int
}

func (g *stubGenerator) Generate(ctx context.Context, fileURL string) (string, error) {
	g.calls++
	return g.summary, g.err
}

type nopPublisher struct{}

func (nopPublisher) PublishProcess(ctx context.Context, documentID, requestID string) error {
	return nil
}

func newPendingDoc(t *testing.T) (*documents.Service, *documents.MemoryRepo, string) {
	t.Helper()
	repo := documents.NewMemoryRepo()
	svc := &documents.Service{Repo: repo, Publisher: nopPublisher{}}
	doc, err := svc.Enqueue(context.Background(), "user-1", "a.pdf", "https://x/a.pdf", "req")
	require.NoError(t, err)
	return svc, repo, doc.ID
}

func TestPipelineCompletesDocument(t *testing.T) {
	svc, repo, id := newPendingDoc(t)
	gen := &stubGenerator{summary: "# Title\nbody"}

	require.NoError(t, (&Pipeline{Docs: svc, Summaries: gen}).ProcessDocument(context.Background(), id))

	doc, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, documents.StatusCompleted, doc.Status)
	assert.Equal(t, "# Title\nbody", doc.Summary)
	assert.NotNil(t, doc.ProcessedAt)
}

func TestPipelineMarksErrorOnFailure(t *testing.T) {
	svc, repo, id := newPendingDoc(t)
	gen := &stubGenerator{err: errors.New("llm down")}

	err := (&Pipeline{Docs: svc, Summaries: gen}).ProcessDocument(context.Background(), id)
	require.Error(t, err)

	doc, getErr := repo.GetByID(context.Background(), id)
	require.NoError(t, getErr)
	assert.Equal(t, documents.StatusError, doc.Status)
	assert.Empty(t, doc.Summary)
}

func TestPipelineSkipsCompletedDocuments(t *testing.T) {
	svc, _, id := newPendingDoc(t)
	gen := &stubGenerator{summary: "# S"}
	p := &Pipeline{Docs: svc, Summaries: gen}

	require.NoError(t, p.ProcessDocument(context.Background(), id))
	require.NoError(t, p.ProcessDocument(context.Background(), id))
	assert.Equal(t, 1, gen.calls)
}

func TestPipelineUnknownDocument(t *testing.T) {
	svc, _, _ := newPendingDoc(t)
	err := (&Pipeline{Docs: svc, Summaries: &stubGenerator{}}).ProcessDocument(context.Background(), "6f1c1f5e-6a53-4f3e-9a0b-0f5c2f0b8f11")
	assert.ErrorIs(t, err, documents.ErrNotFound)
}
