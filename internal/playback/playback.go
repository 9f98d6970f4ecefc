// Package playback drives on-demand audio for a document summary: it asks the
// server to synthesize speech, tracks playback state, and saves the audio URL
// back onto the document.
package playback

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// State is the controller's position in the playback lifecycle.
type State string

const (
	StateNoAudio          State = "no_audio"
	StateGenerating       State = "generating"
	StateReady            State = "ready"
	StatePlaying          State = "playing"
	StatePaused           State = "paused"
	StateGenerationFailed State = "generation_failed"
)

const (
	MsgNetwork     = "Network error. Please check your connection."
	MsgGeneric     = "Failed to generate speech. Please try again."
	MsgNoText      = "No valid text content found after cleaning"
	MsgMediaFailed = "Failed to load audio"
)

// Speeds lists the accepted playback rate multipliers.
var Speeds = []float64{0.5, 0.75, 1, 1.25, 1.5, 2}

var (
	ErrNetwork          = errors.New("network error")
	ErrUnsupportedSpeed = errors.New("unsupported playback speed")
	ErrNoText           = errors.New("no text to synthesize")
)

// APIError is a non-2xx answer from the server. Message is the server's
// error text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

// GenerateRequest is what the controller sends to a Generator.
type GenerateRequest struct {
	Text    string
	VoiceID string
}

// Generator synthesizes text and returns the audio URL.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Persister stores the audio URL on a document.
type Persister interface {
	PersistAudio(ctx context.Context, documentID, audioURL string) error
}

// Snapshot is a copy of the controller's observable state.
type Snapshot struct {
	State    State   `json:"state"`
	AudioURL string  `json:"audioUrl,omitempty"`
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
	Volume   float64 `json:"volume"`
	Muted    bool    `json:"muted"`
	Speed    float64 `json:"speed"`
	Error    string  `json:"error,omitempty"`
}

// EffectiveVolume is the level the media element should play at.
func (s Snapshot) EffectiveVolume() float64 {
	if s.Muted {
		return 0
	}
	return s.Volume
}

// UserMessage turns a generation error into the text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return MsgGeneric
	}
	if errors.Is(err, ErrNetwork) {
		return MsgNetwork
	}
	if errors.Is(err, ErrNoText) {
		return MsgNoText
	}
	return MsgGeneric
}

func validSpeed(s float64) bool {
	for _, v := range Speeds {
		if v == s {
			return true
		}
	}
	return false
}

func knownDuration(d float64) bool {
	return d > 0 && !math.IsInf(d, 0) && !math.IsNaN(d)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
