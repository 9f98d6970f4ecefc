package playback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPGeneratorPostsWithBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/tts/generate", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["text"])
		assert.Equal(t, "en-US-amy", body["voice_id"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"audio_url":"https://cdn/x.mp3","duration":1.5}`))
	}))
	defer srv.Close()

	gen := HTTPGenerator{BaseURL: srv.URL, Token: "tok"}
	url, err := gen.Generate(context.Background(), GenerateRequest{Text: "hello", VoiceID: "en-US-amy"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/x.mp3", url)
}

func TestHTTPGeneratorSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"Text is required"}`))
	}))
	defer srv.Close()

	_, err := HTTPGenerator{BaseURL: srv.URL}.Generate(context.Background(), GenerateRequest{Text: "x"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Text is required", UserMessage(err))
}

func TestHTTPGeneratorNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := HTTPGenerator{BaseURL: base}.Generate(context.Background(), GenerateRequest{Text: "x"})
	require.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, MsgNetwork, UserMessage(err))
}

func TestHTTPGeneratorMissingAudioURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	_, err := HTTPGenerator{BaseURL: srv.URL}.Generate(context.Background(), GenerateRequest{Text: "x"})
	assert.Equal(t, MsgGeneric, UserMessage(err))
}

func TestHTTPPersisterPutsAudioURL(t *testing.T) {
	var gotMethod, gotPath, gotAuth, gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotURL = body["audioUrl"]
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	p := HTTPPersister{BaseURL: srv.URL, Token: "tok"}
	require.NoError(t, p.PersistAudio(context.Background(), "doc-1", "https://cdn/x.mp3"))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/v1/documents/doc-1/audio", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "https://cdn/x.mp3", gotURL)
}

func TestHTTPPersisterNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":"Document not found"}`))
	}))
	defer srv.Close()

	err := HTTPPersister{BaseURL: srv.URL}.PersistAudio(context.Background(), "d", "u")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Document not found", apiErr.Message)
}
