package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Voice describes a selectable synthesis voice.
type Voice struct {
	ID     string `toml:"id" json:"id"`
	Name   string `toml:"name" json:"name"`
	Locale string `toml:"locale" json:"locale"`
	Gender string `toml:"gender" json:"gender,omitempty"`
}

type voiceCatalogFile struct {
	Voices []Voice `toml:"voices"`
}

// DefaultVoices is the catalog used when no voices file is configured.
func DefaultVoices() []Voice {
	return []Voice{
		{ID: "en-US-amy", Name: "Amy", Locale: "en-US", Gender: "female"},
		{ID: "en-US-josh", Name: "Josh", Locale: "en-US", Gender: "male"},
		{ID: "en-US-sarah", Name: "Sarah", Locale: "en-US", Gender: "female"},
		{ID: "en-US-terrell", Name: "Terrell", Locale: "en-US", Gender: "male"},
	}
}

// LoadVoices reads the voice catalog from a TOML file. An empty path yields the defaults.
func LoadVoices(path string) ([]Voice, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultVoices(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read voices file: %w", err)
	}
	return ParseVoices(raw)
}

// ParseVoices decodes a TOML catalog of [[voices]] tables.
func ParseVoices(raw []byte) ([]Voice, error) {
	var file voiceCatalogFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode voices: %w", err)
	}
	if len(file.Voices) == 0 {
		return nil, errors.New("voices file has no [[voices]] entries")
	}
	seen := make(map[string]struct{}, len(file.Voices))
	out := make([]Voice, 0, len(file.Voices))
	for i, v := range file.Voices {
		v.ID = strings.TrimSpace(v.ID)
		if v.ID == "" {
			return nil, fmt.Errorf("voice %d: id is required", i)
		}
		if _, dup := seen[v.ID]; dup {
			return nil, fmt.Errorf("voice %q listed twice", v.ID)
		}
		seen[v.ID] = struct{}{}
		if v.Name == "" {
			v.Name = v.ID
		}
		out = append(out, v)
	}
	return out, nil
}
