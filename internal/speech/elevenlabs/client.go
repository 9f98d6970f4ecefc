// Package elevenlabs synthesizes speech with ElevenLabs and publishes the
// audio through the object store.
package elevenlabs

import (
	"bytes"
	"context"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/haguro/elevenlabs-go"

	"docsum-backend/internal/shared/storage/object"
	"docsum-backend/internal/speech"
)

const (
	DefaultVoiceID = "21m00Tcm4TlvDq8ikWAM"
	DefaultModelID = "eleven_multilingual_v2"

	audioContentType = "audio/mpeg"
	audioPrefix      = "tts"
)

// Locale-style ids ("en-US", "en-US-amy") belong to other vendors.
var localeVoice = regexp.MustCompile(`^[a-z]{2}-[A-Z]{2}(-|$)`)

type synthesizeFunc func(ctx context.Context, voiceID string, req elevenlabs.TextToSpeechRequest) ([]byte, error)

// Client implements speech.Vendor.
type Client struct {
	apiKey     string
	voiceID    string
	modelID    string
	timeout    time.Duration
	store      object.ObjectStore
	synthesize synthesizeFunc
}

// NewClient returns an ElevenLabs vendor that stores audio in store.
func NewClient(apiKey string, store object.ObjectStore, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = speech.DefaultAttemptTimeout
	}
	c := &Client{
		apiKey:  strings.TrimSpace(apiKey),
		voiceID: DefaultVoiceID,
		modelID: DefaultModelID,
		timeout: timeout,
		store:   store,
	}
	c.synthesize = c.callAPI
	return c
}

func (c *Client) callAPI(ctx context.Context, voiceID string, req elevenlabs.TextToSpeechRequest) ([]byte, error) {
	// The SDK binds a context per client, so one is created per attempt.
	client := elevenlabs.NewClient(ctx, c.apiKey, c.timeout)
	return client.TextToSpeech(voiceID, req)
}

// Generate performs one text-to-speech call and uploads the audio.
func (c *Client) Generate(ctx context.Context, req speech.Request) (speech.Result, error) {
	if c.apiKey == "" {
		return speech.Result{}, speech.ErrMissingCredential
	}
	if c.store == nil {
		return speech.Result{}, &speech.Error{Kind: speech.KindTransport, Message: "Failed to generate speech: no audio store configured"}
	}

	audio, err := c.synthesize(ctx, c.resolveVoice(req.VoiceID), elevenlabs.TextToSpeechRequest{
		Text:    req.Text,
		ModelID: c.modelID,
	})
	if err != nil {
		return speech.Result{}, classify(err)
	}
	if len(audio) == 0 {
		return speech.Result{}, &speech.Error{Kind: speech.KindTransport, Message: "Failed to generate speech: empty audio"}
	}

	key := path.Join(audioPrefix, time.Now().UTC().Format("2006/01/02"), uuid.NewString()+".mp3")
	if _, err := c.store.SaveWithKey(ctx, key, audioContentType, bytes.NewReader(audio)); err != nil {
		return speech.Result{}, &speech.Error{Kind: speech.KindTransport, Message: "Failed to generate speech: store audio", Err: err}
	}

	chars := utf8.RuneCountInString(req.Text)
	return speech.Result{
		AudioURL:      c.store.URL(key),
		ConsumedChars: chars,
	}, nil
}

func (c *Client) resolveVoice(voiceID string) string {
	v := strings.TrimSpace(voiceID)
	if v == "" || localeVoice.MatchString(v) {
		return c.voiceID
	}
	return v
}

// classify maps SDK errors by their reported HTTP status text.
func classify(err error) *speech.Error {
	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case containsAny(lower, "401", "unauthorized", "invalid_api_key"):
		return &speech.Error{Kind: speech.KindAuth, Message: "Invalid ElevenLabs API key", Err: err}
	case containsAny(lower, "429", "too many requests", "quota_exceeded"):
		return &speech.Error{Kind: speech.KindRateLimit, Message: "Rate limit exceeded. Please try again later.", Err: err}
	case containsAny(lower, "400", "422", "voice_not_found", "validation"):
		return &speech.Error{Kind: speech.KindValidation, Message: "ElevenLabs API Error: " + msg}
	case containsAny(lower, "deadline exceeded", "timeout"):
		return &speech.Error{Kind: speech.KindTransport, Message: "Failed to generate speech: request timed out", Err: err}
	default:
		return &speech.Error{Kind: speech.KindTransport, Message: "Failed to generate speech", Err: err}
	}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

var _ speech.Vendor = (*Client)(nil)
