package bootstrap

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsum-backend/internal/shared/config"
	"docsum-backend/internal/summarize"
)

func memoryConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Env:           "test",
		LocalStoreDir: t.TempDir(),
		PublicBaseURL: "http://localhost:8080",
		LLMProvider:   "openai",
	}
}

func TestBuildMemoryModeServesHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app, err := Build(memoryConfig(t))
	require.NoError(t, err)
	t.Cleanup(app.Close)

	assert.Nil(t, app.DB)
	assert.Nil(t, app.NATS)
	assert.Nil(t, app.Presigner)
	assert.IsType(t, summarize.PlaceholderClient{}, app.Summarizer)
	assert.Equal(t, config.DefaultVoices(), app.Voices)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"database":"memory"}`, w.Body.String())
}

func TestBuildWiresDocumentsAndQueueAbsence(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app, err := Build(memoryConfig(t))
	require.NoError(t, err)
	t.Cleanup(app.Close)

	body := `{"file":{"name":"a.pdf","url":"http://localhost:8080/api/v1/files/a.pdf"},"data":"# Title"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "u1")
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	req.Header.Set("X-User-Id", "u1")
	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	body = `{"file":{"name":"b.pdf","url":"http://localhost:8080/api/v1/files/b.pdf"}}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/documents/process", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "u1")
	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestBuildRequiresDatabaseOutsideDev(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Env = "production"
	_, err := Build(cfg)
	assert.Error(t, err)
}

func TestFetchHostsIncludesPublicHostAndS3(t *testing.T) {
	cfg := config.Config{
		PublicBaseURL: "https://api.docsum.test:8443",
		FetchHosts:    []string{"utfs.io"},
	}
	assert.Equal(t, []string{"utfs.io", "api.docsum.test"}, fetchHosts(cfg))

	cfg.UploadsBucket = "docsum-uploads"
	assert.Equal(t, []string{"utfs.io", "api.docsum.test", "amazonaws.com"}, fetchHosts(cfg))
}
