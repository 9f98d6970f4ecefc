package documents

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

var documentRowColumns = []string{
	"id", "user_id", "file_name", "file_url", "summary", "audio_url", "status", "uploaded_at", "processed_at",
}

func TestPGRepoCreatePendingHasNullProcessedAt(t *testing.T) {
	repo, mock := newMockRepo(t)
	uploaded := time.Date(2026, time.May, 5, 8, 0, 0, 0, time.UTC)
	doc := Document{
		ID:         "6f1c1f5e-6a53-4f3e-9a0b-0f5c2f0b8f11",
		UserID:     "user-1",
		FileName:   "a.pdf",
		FileURL:    "https://x/a.pdf",
		Status:     StatusPending,
		UploadedAt: uploaded,
	}

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(doc.ID, doc.UserID, doc.FileName, doc.FileURL, "", "", "pending", uploaded, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListDoesNotSelectSummary(t *testing.T) {
	repo, mock := newMockRepo(t)
	uploaded := time.Date(2026, time.May, 5, 8, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(documentRowColumns).
		AddRow("id-2", "user-1", "b.pdf", "https://x/b.pdf", "", "", "completed", uploaded.Add(time.Hour), uploaded.Add(2*time.Hour)).
		AddRow("id-1", "user-1", "a.pdf", "https://x/a.pdf", "", "https://a/1.mp3", "pending", uploaded, nil)
	mock.ExpectQuery(regexp.QuoteMeta("'' AS summary")).
		WithArgs("user-1").
		WillReturnRows(rows)

	docs, err := repo.ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != "id-2" {
		t.Fatalf("unexpected docs: %+v", docs)
	}
	if docs[0].ProcessedAt == nil || docs[1].ProcessedAt != nil {
		t.Fatalf("processed_at not mapped: %+v", docs)
	}
	if docs[1].AudioURL != "https://a/1.mp3" || docs[1].Status != StatusPending {
		t.Fatalf("unexpected second doc: %+v", docs[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateAudioScopedToOwner(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("UPDATE documents").
		WithArgs("https://a/x.mp3", "id-1", "user-2").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.UpdateAudioURL(context.Background(), "id-1", "user-2", "https://a/x.mp3"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDeleteReturnsRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	uploaded := time.Date(2026, time.May, 5, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery("DELETE FROM documents").
		WithArgs("id-1", "user-1").
		WillReturnRows(sqlmock.NewRows(documentRowColumns).
			AddRow("id-1", "user-1", "a.pdf", "https://x/a.pdf", "# S", "", "completed", uploaded, uploaded))

	doc, err := repo.Delete(context.Background(), "id-1", "user-1")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if doc.Summary != "# S" || doc.FileName != "a.pdf" {
		t.Fatalf("unexpected snapshot: %+v", doc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoSetStatusMissingRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE documents").
		WithArgs("processing", "id-9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.SetStatus(context.Background(), "id-9", StatusProcessing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
