package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"docsum-backend/internal/shared/metrics"
	"docsum-backend/internal/shared/telemetry"
	"docsum-backend/internal/summarize"
)

const (
	temperature = 0.7
	maxTokens   = 1500
)

// Client implements summarize.Summarizer using OpenAI Chat Completions.
type Client struct {
	api   *goopenai.Client
	model string
}

// Options tune the client. BaseURL is only set by tests and proxies.
type Options struct {
	Timeout time.Duration
	BaseURL string
}

// NewClient constructs a new OpenAI client.
func NewClient(apiKey, model string, opts Options) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	cfg := goopenai.DefaultConfig(apiKey)
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	return &Client{api: goopenai.NewClientWithConfig(cfg), model: model}, nil
}

// Summarize asks the model for a structured markdown summary of text.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", summarize.ErrEmptyInput
	}
	start := time.Now()

	req := goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: summarize.SystemPrompt()},
			{Role: goopenai.ChatMessageRoleUser, Content: summarize.UserPrompt(text)},
		},
		MaxTokens: maxTokens,
	}
	if !isGPT5(c.model) {
		req.Temperature = temperature
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		metrics.ObserveSummary("error", time.Since(start))
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("openai request timeout: %w", err)
		}
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		metrics.ObserveSummary("error", time.Since(start))
		return "", fmt.Errorf("openai response missing choices")
	}

	summary := summarize.TrimToTitle(resp.Choices[0].Message.Content)
	if summary == "" {
		metrics.ObserveSummary("empty", time.Since(start))
		return "", summarize.ErrEmptySummary
	}

	telemetry.Info("llm.response", map[string]any{
		"model":             resp.Model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"total_tokens":      resp.Usage.TotalTokens,
		"duration_ms":       time.Since(start).Milliseconds(),
	})
	metrics.ObserveSummary("ok", time.Since(start))
	return summary, nil
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

var _ summarize.Summarizer = (*Client)(nil)
