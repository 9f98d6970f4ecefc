// Package util builds storage keys for uploaded documents and audio.
package util

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

const maxFileNameRunes = 120

var ErrInvalidFileName = errors.New("invalid file name")

// OwnerPrefix returns a filesystem-safe namespace for a user id.
func OwnerPrefix(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}

// CleanFileName keeps the base name of an uploaded file, drops control
// characters, replaces whitespace with underscores and caps the length while
// preserving the extension.
func CleanFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		return "", ErrInvalidFileName
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsControl(r):
		case unicode.IsSpace(r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if clean == "" {
		return "", ErrInvalidFileName
	}
	if utf8.RuneCountInString(clean) > maxFileNameRunes {
		ext := path.Ext(clean)
		if utf8.RuneCountInString(ext) >= maxFileNameRunes {
			ext = ""
		}
		stem := []rune(strings.TrimSuffix(clean, ext))
		clean = string(stem[:maxFileNameRunes-utf8.RuneCountInString(ext)]) + ext
	}
	return clean, nil
}

// NewObjectKey returns "<owner prefix>/<uuid>_<clean name>".
func NewObjectKey(ownerID, fileName string) (string, error) {
	clean, err := CleanFileName(fileName)
	if err != nil {
		return "", err
	}
	return path.Join(OwnerPrefix(ownerID), uuid.NewString()+"_"+clean), nil
}
