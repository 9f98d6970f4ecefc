package object

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"
)

// ErrInvalidKey is returned for keys that escape the store root.
var ErrInvalidKey = errors.New("invalid storage key")

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = errors.New("object not found")

// Object describes a stored blob.
type Object struct {
	Key         string
	Size        int64
	ContentType string
}

// ObjectStore saves and serves uploaded PDFs and generated audio.
type ObjectStore interface {
	Save(ctx context.Context, ownerID string, fileName string, r io.Reader) (Object, error)
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	// URL returns an address clients can fetch the object from.
	URL(storageKey string) string
}

// CleanKey normalizes a storage key and rejects traversal and absolute paths.
func CleanKey(storageKey string) (string, error) {
	raw := strings.TrimSpace(strings.ReplaceAll(storageKey, "\\", "/"))
	if raw == "" || strings.HasPrefix(raw, "/") {
		return "", ErrInvalidKey
	}
	for _, part := range strings.Split(raw, "/") {
		if part == ".." {
			return "", ErrInvalidKey
		}
	}
	clean := path.Clean(raw)
	if clean == "." {
		return "", ErrInvalidKey
	}
	return clean, nil
}

// SniffReader reads up to 512 bytes to detect the content type and returns a
// reader that replays them ahead of the rest of r.
func SniffReader(r io.Reader) (string, io.Reader, error) {
	var sniff [512]byte
	n, err := io.ReadFull(r, sniff[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}
	head := append([]byte(nil), sniff[:n]...)
	return http.DetectContentType(head), io.MultiReader(bytes.NewReader(head), r), nil
}
