// Package murf calls the Murf text-to-speech HTTP API.
package murf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docsum-backend/internal/shared/config"
	"docsum-backend/internal/speech"
)

const (
	DefaultBaseURL = "https://api.murf.ai"

	maxErrorBody = 64 << 10
	maxBody      = 4 << 20
)

// Client implements speech.Vendor against Murf.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a Murf client. An empty key is accepted so the process can
// boot; every call then fails with speech.ErrMissingCredential.
func NewClient(apiKey, baseURL string, httpClient *http.Client) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type generateRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId,omitempty"`
	Format  string `json:"format,omitempty"`
	Rate    int    `json:"rate,omitempty"`
	Pitch   int    `json:"pitch,omitempty"`
}

type wordDuration struct {
	Word      string  `json:"word"`
	StartMs   float64 `json:"startMs"`
	EndMs     float64 `json:"endMs"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

type generateResponse struct {
	AudioFile               string         `json:"audioFile"`
	AudioLengthInSeconds    float64        `json:"audioLengthInSeconds"`
	ConsumedCharacterCount  int            `json:"consumedCharacterCount"`
	RemainingCharacterCount int            `json:"remainingCharacterCount"`
	WordDurations           []wordDuration `json:"wordDurations"`
	Warning                 string         `json:"warning"`
}

type errorResponse struct {
	ErrorMessage string `json:"errorMessage"`
	ErrorCode    int    `json:"errorCode"`
}

// Generate performs one POST /v1/speech/generate call.
func (c *Client) Generate(ctx context.Context, req speech.Request) (speech.Result, error) {
	if c.apiKey == "" {
		return speech.Result{}, speech.ErrMissingCredential
	}

	payload, err := json.Marshal(generateRequest{
		Text:    req.Text,
		VoiceID: req.VoiceID,
		Format:  req.Format,
		Rate:    req.Rate,
		Pitch:   req.Pitch,
	})
	if err != nil {
		return speech.Result{}, &speech.Error{Kind: speech.KindTransport, Message: "encode murf request", Err: err}
	}

	body, status, err := c.do(ctx, http.MethodPost, "/v1/speech/generate", payload)
	if err != nil {
		return speech.Result{}, err
	}
	if status < 200 || status >= 300 {
		return speech.Result{}, classify(status, body)
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return speech.Result{}, &speech.Error{Kind: speech.KindTransport, Status: status, Message: "Failed to generate speech: invalid vendor response", Err: err}
	}
	if strings.TrimSpace(parsed.AudioFile) == "" {
		return speech.Result{}, &speech.Error{Kind: speech.KindTransport, Status: status, Message: "Failed to generate speech: response has no audio file"}
	}

	return speech.Result{
		AudioURL:        parsed.AudioFile,
		DurationSeconds: parsed.AudioLengthInSeconds,
		WordTimings:     toTimings(parsed.WordDurations),
		ConsumedChars:   parsed.ConsumedCharacterCount,
		RemainingChars:  parsed.RemainingCharacterCount,
	}, nil
}

type voiceResponse struct {
	VoiceID     string `json:"voiceId"`
	DisplayName string `json:"displayName"`
	Locale      string `json:"locale"`
	Gender      string `json:"gender"`
}

// Voices lists the voices available to the account.
func (c *Client) Voices(ctx context.Context) ([]config.Voice, error) {
	if c.apiKey == "" {
		return nil, speech.ErrMissingCredential
	}
	body, status, err := c.do(ctx, http.MethodGet, "/v1/speech/voices", nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, classify(status, body)
	}
	var parsed []voiceResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode murf voices: %w", err)
	}
	out := make([]config.Voice, 0, len(parsed))
	for _, v := range parsed {
		if v.VoiceID == "" {
			continue
		}
		out = append(out, config.Voice{
			ID:     v.VoiceID,
			Name:   v.DisplayName,
			Locale: v.Locale,
			Gender: strings.ToLower(v.Gender),
		})
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, &speech.Error{Kind: speech.KindTransport, Message: "build murf request", Err: err}
	}
	httpReq.Header.Set("api-key", c.apiKey)
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		msg := "Failed to generate speech: " + err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "Failed to generate speech: request timed out"
		}
		return nil, 0, &speech.Error{Kind: speech.KindTransport, Message: msg, Err: err}
	}
	defer resp.Body.Close()

	limit := int64(maxBody)
	if resp.StatusCode >= 300 {
		limit = maxErrorBody
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, resp.StatusCode, &speech.Error{Kind: speech.KindTransport, Status: resp.StatusCode, Message: "read murf response", Err: err}
	}
	return body, resp.StatusCode, nil
}

// classify maps a non-2xx Murf response to a speech.Error. A vendor-provided
// errorMessage always wins over the status code.
func classify(status int, body []byte) *speech.Error {
	var parsed errorResponse
	_ = json.Unmarshal(body, &parsed)
	if msg := strings.TrimSpace(parsed.ErrorMessage); msg != "" {
		return &speech.Error{Kind: speech.KindValidation, Status: status, Message: "Murf API Error: " + msg}
	}
	switch status {
	case http.StatusBadRequest:
		return &speech.Error{Kind: speech.KindValidation, Status: status, Message: "Invalid request parameters. Please check voice ID and text format."}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &speech.Error{Kind: speech.KindAuth, Status: status, Message: "Invalid API key. Please check your MURF_API_KEY."}
	case http.StatusTooManyRequests:
		return &speech.Error{Kind: speech.KindRateLimit, Status: status, Message: "Rate limit exceeded. Please try again later."}
	default:
		return &speech.Error{Kind: speech.KindTransport, Status: status, Message: fmt.Sprintf("Failed to generate speech: vendor status %d", status)}
	}
}

func toTimings(in []wordDuration) []speech.WordTiming {
	if len(in) == 0 {
		return nil
	}
	out := make([]speech.WordTiming, 0, len(in))
	for _, w := range in {
		start, end := w.StartMs, w.EndMs
		if start == 0 && end == 0 {
			start, end = w.StartTime, w.EndTime
		}
		out = append(out, speech.WordTiming{Word: w.Word, StartMs: start, EndMs: end})
	}
	return out
}

var _ speech.Vendor = (*Client)(nil)
