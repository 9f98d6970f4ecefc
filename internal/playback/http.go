package playback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	ttsGeneratePath = "/api/v1/tts/generate"
	documentsPath   = "/api/v1/documents/"
	defaultTimeout  = 60 * time.Second
	maxErrorBody    = 64 << 10
)

// HTTPGenerator calls the server's TTS endpoint with a bearer token.
type HTTPGenerator struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

type generateBody struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id,omitempty"`
}

type generateReply struct {
	AudioURL string `json:"audio_url"`
}

// Generate implements Generator.
func (g HTTPGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	var out generateReply
	err := doJSON(ctx, g.Client, http.MethodPost, g.BaseURL+ttsGeneratePath, g.Token,
		generateBody{Text: req.Text, VoiceID: req.VoiceID}, &out)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out.AudioURL) == "" {
		return "", &APIError{Status: http.StatusOK, Message: MsgGeneric}
	}
	return out.AudioURL, nil
}

// HTTPPersister saves audio URLs through the document audio endpoint.
type HTTPPersister struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// PersistAudio implements Persister.
func (p HTTPPersister) PersistAudio(ctx context.Context, documentID, audioURL string) error {
	endpoint := p.BaseURL + documentsPath + url.PathEscape(documentID) + "/audio"
	return doJSON(ctx, p.Client, http.MethodPut, endpoint, p.Token,
		map[string]string{"audioUrl": audioURL}, nil)
}

func doJSON(ctx context.Context, client *http.Client, method, endpoint, token string, in, out any) error {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = json.Unmarshal(raw, &body)
		return &APIError{Status: resp.StatusCode, Message: body.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
