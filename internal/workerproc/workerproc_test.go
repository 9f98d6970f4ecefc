package workerproc

import (
	"context"
	"errors"
	"testing"
)

func TestParseMessage(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr any
		wantID  string
	}{
		{name: "empty", body: "  ", wantErr: ErrEmptyBody{}},
		{name: "garbage", body: "{not json", wantErr: ErrDecode{}},
		{name: "missing id", body: `{"requestId":"r1","version":1}`, wantErr: ErrMissingDocumentID{}},
		{name: "valid", body: `{"documentId":"doc-1","requestId":"r1","enqueuedAt":"2026-01-01T00:00:00Z","version":1}`, wantID: "doc-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, meta, err := ParseMessage(tt.body)
			switch want := tt.wantErr.(type) {
			case nil:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if msg.DocumentID != tt.wantID {
					t.Fatalf("expected %s, got %s", tt.wantID, msg.DocumentID)
				}
			case ErrEmptyBody:
				if !errors.As(err, &want) {
					t.Fatalf("expected ErrEmptyBody, got %v", err)
				}
			case ErrDecode:
				if !errors.As(err, &want) || want.Meta.BodySHA == "" {
					t.Fatalf("expected ErrDecode with meta, got %v", err)
				}
			case ErrMissingDocumentID:
				if !errors.As(err, &want) || want.RequestID != "r1" {
					t.Fatalf("expected ErrMissingDocumentID with request id, got %v", err)
				}
			}
			if meta.BodyLen != len(tt.body) {
				t.Fatalf("expected body len %d, got %d", len(tt.body), meta.BodyLen)
			}
		})
	}
}

type recordingProcessor struct {
	ids []string
	err error
}

func (p *recordingProcessor) ProcessDocument(ctx context.Context, documentID string) error {
	p.ids = append(p.ids, documentID)
	return p.err
}

func TestHandleMessageWrapsProcessError(t *testing.T) {
	boom := errors.New("boom")
	proc := &recordingProcessor{err: boom}

	err := HandleMessage(context.Background(), proc, `{"documentId":"doc-2","requestId":"r2","version":1}`)
	var procErr ErrProcess
	if !errors.As(err, &procErr) {
		t.Fatalf("expected ErrProcess, got %v", err)
	}
	if procErr.DocumentID != "doc-2" || procErr.RequestID != "r2" || !errors.Is(err, boom) {
		t.Fatalf("unexpected error detail: %+v", procErr)
	}
}

func TestHandleMessageRequiresProcessor(t *testing.T) {
	if err := HandleMessage(context.Background(), nil, `{"documentId":"d"}`); err == nil {
		t.Fatal("expected error without processor")
	}
}
