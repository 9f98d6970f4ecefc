// Package speech turns cleaned summary text into hosted audio through a
// text-to-speech vendor, retrying across voice strategies.
package speech

import "context"

// DefaultFormat is the audio container requested from vendors.
const DefaultFormat = "MP3"

// Request is a single vendor synthesis call.
type Request struct {
	Text    string
	VoiceID string
	Format  string
	// Rate is a percentage offset from normal speed (0 = unchanged).
	Rate  int
	Pitch int
}

// WordTiming marks when a word is spoken in the audio.
type WordTiming struct {
	Word    string  `json:"word"`
	StartMs float64 `json:"startMs"`
	EndMs   float64 `json:"endMs"`
}

// Result is the outcome of a successful synthesis.
type Result struct {
	AudioURL        string       `json:"audio_url"`
	DurationSeconds float64      `json:"duration"`
	WordTimings     []WordTiming `json:"word_timestamps"`
	ConsumedChars   int          `json:"consumed_characters"`
	RemainingChars  int          `json:"remaining_characters"`
}

// Vendor performs exactly one outbound synthesis call per Generate.
type Vendor interface {
	Generate(ctx context.Context, req Request) (Result, error)
}

// RateFromSpeed converts a playback speed multiplier to a vendor rate offset
// clamped to the ±50% range vendors accept.
func RateFromSpeed(speed float64) int {
	if speed <= 0 {
		return 0
	}
	rate := int((speed - 1) * 100)
	if rate > 50 {
		return 50
	}
	if rate < -50 {
		return -50
	}
	return rate
}
