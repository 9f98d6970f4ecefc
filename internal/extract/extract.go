package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"docsum-backend/internal/shared/storage/object"
)

const (
	// MaxBytes caps how much of a remote document is read.
	MaxBytes     = 32 << 20
	FetchTimeout = 60 * time.Second

	mimePDF = "application/pdf"
)

var (
	ErrTooLarge    = errors.New("document exceeds size limit")
	ErrEmptyText   = errors.New("no text found in document")
	ErrUnsupported = errors.New("unsupported document type")
	ErrURLRejected = errors.New("document url not allowed")
)

// FromURL downloads a document and returns its plain text, one page per line.
// Only http and https URLs are fetched.
func FromURL(ctx context.Context, client *http.Client, rawURL string) (string, error) {
	return fromURL(ctx, client, rawURL, nil)
}

func fromURL(ctx context.Context, client *http.Client, rawURL string, hosts []string) (string, error) {
	parsed, err := parseRemote(rawURL)
	if err != nil {
		return "", fmt.Errorf("extract url=%s: %w", rawURL, err)
	}
	if !hostAllowed(parsed.Hostname(), hosts) {
		return "", fmt.Errorf("extract url=%s: host %s: %w", rawURL, parsed.Hostname(), ErrURLRejected)
	}
	if client == nil {
		client = &http.Client{Timeout: FetchTimeout}
	}
	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("extract url=%s: %w", rawURL, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("extract url=%s: fetch: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("extract url=%s: fetch status %d", rawURL, resp.StatusCode)
	}

	raw, err := readCapped(resp.Body)
	if err != nil {
		return "", fmt.Errorf("extract url=%s: %w", rawURL, err)
	}

	text, err := FromBytes(ctx, raw, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("extract url=%s: %w", rawURL, err)
	}
	return text, nil
}

func parseRemote(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, ErrURLRejected
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, ErrURLRejected
	}
	if u.Hostname() == "" {
		return nil, ErrURLRejected
	}
	return u, nil
}

// hostAllowed matches host against entries exactly or as a subdomain. An
// empty list allows every host.
func hostAllowed(host string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for _, entry := range allowed {
		entry = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(entry), "."))
		if entry == "" {
			continue
		}
		if host == entry || strings.HasSuffix(host, "."+entry) {
			return true
		}
	}
	return false
}

// FromStore reads an object from the store and extracts its text.
func FromStore(ctx context.Context, store object.ObjectStore, key string) (string, error) {
	body, err := store.Open(ctx, key)
	if err != nil {
		return "", fmt.Errorf("extract key=%s: %w", key, err)
	}
	defer body.Close()

	raw, err := readCapped(body)
	if err != nil {
		return "", fmt.Errorf("extract key=%s: %w", key, err)
	}
	text, err := FromBytes(ctx, raw, "")
	if err != nil {
		return "", fmt.Errorf("extract key=%s: %w", key, err)
	}
	return text, nil
}

// FromBytes extracts text from an in-memory payload. PDFs are detected by
// their magic bytes when the declared type is missing or generic.
func FromBytes(ctx context.Context, data []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch normalizeMimeType(mimeType, data) {
	case mimePDF:
		return extractPDF(data)
	case "text/plain":
		text := strings.TrimSpace(string(data))
		if text == "" {
			return "", ErrEmptyText
		}
		return text, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, mimeType)
	}
}

func readCapped(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if len(raw) > MaxBytes {
		return nil, ErrTooLarge
	}
	return raw, nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("pdf page %d: %w", i, err)
		}
		pages = append(pages, text)
	}

	joined := joinPages(pages)
	if joined == "" {
		return "", ErrEmptyText
	}
	return joined, nil
}

func joinPages(pages []string) string {
	return strings.TrimSpace(strings.Join(pages, "\n"))
}

func normalizeMimeType(mimeType string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return mimePDF
	}
	switch clean {
	case "", "application/octet-stream", "binary/octet-stream":
		sniffed := http.DetectContentType(data)
		return strings.TrimSpace(strings.Split(sniffed, ";")[0])
	}
	return clean
}
