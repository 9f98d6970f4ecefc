package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"docsum-backend/internal/summarize"
)

type capturedRequest struct {
	mu   sync.Mutex
	path string
	auth string
	body map[string]any
}

func newFakeOpenAI(t *testing.T, status int, reply string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		captured.mu.Lock()
		captured.path = r.URL.Path
		captured.auth = r.Header.Get("Authorization")
		captured.body = payload
		captured.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func completion(content string) string {
	raw, _ := json.Marshal(map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
	})
	return string(raw)
}

func TestSummarizeTrimsPreambleAndSendsSettings(t *testing.T) {
	srv, captured := newFakeOpenAI(t, http.StatusOK, completion("Here you go:\n# Quarterly Report\n## 📋 Executive Summary\nGrowth."))

	client, err := NewClient("test-key", "gpt-4o-mini", Options{BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	summary, err := client.Summarize(context.Background(), "report text")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary != "# Quarterly Report\n## 📋 Executive Summary\nGrowth." {
		t.Fatalf("unexpected summary %q", summary)
	}

	captured.mu.Lock()
	defer captured.mu.Unlock()
	if captured.path != "/v1/chat/completions" {
		t.Fatalf("unexpected path %s", captured.path)
	}
	if captured.auth != "Bearer test-key" {
		t.Fatalf("unexpected auth header %q", captured.auth)
	}
	if captured.body["temperature"] != 0.7 {
		t.Fatalf("expected temperature 0.7, got %v", captured.body["temperature"])
	}
	if captured.body["max_tokens"] != float64(1500) {
		t.Fatalf("expected max_tokens 1500, got %v", captured.body["max_tokens"])
	}
	msgs, _ := captured.body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	user, _ := msgs[1].(map[string]any)
	if content, _ := user["content"].(string); !strings.HasSuffix(content, "report text") {
		t.Fatalf("user message should end with document text: %q", content)
	}
}

func TestSummarizeOmitsTemperatureForGPT5(t *testing.T) {
	srv, captured := newFakeOpenAI(t, http.StatusOK, completion("# T\nbody"))
	client, err := NewClient("k", "gpt-5-mini", Options{BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Summarize(context.Background(), "text"); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	captured.mu.Lock()
	defer captured.mu.Unlock()
	if _, ok := captured.body["temperature"]; ok {
		t.Fatalf("expected temperature to be omitted")
	}
}

func TestSummarizeEmptyContent(t *testing.T) {
	srv, _ := newFakeOpenAI(t, http.StatusOK, completion("   "))
	client, _ := NewClient("k", "gpt-4o-mini", Options{BaseURL: srv.URL + "/v1"})
	if _, err := client.Summarize(context.Background(), "text"); !errors.Is(err, summarize.ErrEmptySummary) {
		t.Fatalf("expected ErrEmptySummary, got %v", err)
	}
}

func TestSummarizeVendorError(t *testing.T) {
	srv, _ := newFakeOpenAI(t, http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	client, _ := NewClient("k", "gpt-4o-mini", Options{BaseURL: srv.URL + "/v1"})
	_, err := client.Summarize(context.Background(), "text")
	if err == nil || !strings.Contains(err.Error(), "bad key") {
		t.Fatalf("expected vendor error, got %v", err)
	}
}

func TestSummarizeRejectsEmptyInputWithoutCall(t *testing.T) {
	client, _ := NewClient("k", "gpt-4o-mini", Options{BaseURL: "http://127.0.0.1:1/v1"})
	if _, err := client.Summarize(context.Background(), " \n"); !errors.Is(err, summarize.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestNewClientRequiresKeyAndModel(t *testing.T) {
	if _, err := NewClient("", "gpt-4o-mini", Options{}); err == nil {
		t.Fatal("expected missing key error")
	}
	if _, err := NewClient("k", " ", Options{}); err == nil {
		t.Fatal("expected missing model error")
	}
}

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := isGPT5(tt.model); got != tt.want {
				t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}
