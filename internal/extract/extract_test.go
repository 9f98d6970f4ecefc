package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFromURLRejectsNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	_, err := FromURL(context.Background(), srv.Client(), srv.URL+"/missing.pdf")
	if err == nil || !strings.Contains(err.Error(), "fetch status 404") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestFromURLCapsSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		chunk := make([]byte, 1<<20)
		for i := 0; i <= MaxBytes>>20; i++ {
			if _, err := w.Write(chunk); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	_, err := FromURL(context.Background(), srv.Client(), srv.URL)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestFromURLPlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("  quarterly report body \n"))
	}))
	t.Cleanup(srv.Close)

	text, err := FromURL(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("FromURL: %v", err)
	}
	if text != "quarterly report body" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestFromBytesRejectsUnsupported(t *testing.T) {
	_, err := FromBytes(context.Background(), []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, "image/png")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestFromBytesBrokenPDF(t *testing.T) {
	_, err := FromBytes(context.Background(), []byte("%PDF-1.4\nnot really a pdf"), "")
	if err == nil {
		t.Fatal("expected error for malformed pdf")
	}
}

func TestNormalizeMimeTypeSniffsPDFMagic(t *testing.T) {
	if got := normalizeMimeType("application/octet-stream", []byte("%PDF-1.7")); got != mimePDF {
		t.Fatalf("expected %s, got %s", mimePDF, got)
	}
	if got := normalizeMimeType("Text/Plain; charset=utf-8", []byte("hi")); got != "text/plain" {
		t.Fatalf("expected text/plain, got %s", got)
	}
}

func TestJoinPages(t *testing.T) {
	got := joinPages([]string{"first page", "second page", ""})
	if got != "first page\nsecond page" {
		t.Fatalf("unexpected join %q", got)
	}
}

func TestFromBytesHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := FromBytes(ctx, []byte("x"), "text/plain"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
