package server_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Goldziher/kreuzberg-go/internal/server"
	"github.com/Goldziher/kreuzberg-go/internal/types"
	"github.com/Goldziher/kreuzberg-go/pkg/kreuzberg"
)

func newTestServer(t *testing.T) *server.Server {
	t.Helper()
	opts := kreuzberg.DefaultOptions()
	opts.CacheDir = t.TempDir()
	engine, err := kreuzberg.New(opts)
	require.NoError(t, err)

	config := &server.Config{Address: ":8080", Debug: true}
	return server.NewServer(config, engine)
}

func multipartRequest(t *testing.T, files map[string]string, cfg string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	for name, content := range files {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	if cfg != "" {
		require.NoError(t, w.WriteField("config", cfg))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/extract", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp server.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.NotEmpty(t, resp.Version)
}

func TestInfoEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/info", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp server.InfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.GoBackend)
	assert.NotEmpty(t, resp.Version)
}

func TestExtractEndpointSingleFile(t *testing.T) {
	srv := newTestServer(t)

	req := multipartRequest(t, map[string]string{"hello.txt": "Hello, Kreuzberg!"}, "")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var results []*types.ExtractionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "Hello, Kreuzberg!", results[0].Content)
}

// Order preservation across a multi-file request, exercised through the
// HTTP boundary.
func TestExtractEndpointPreservesOrder(t *testing.T) {
	srv := newTestServer(t)

	names := []string{"a.txt", "b.txt", "c.txt"}
	contents := []string{"first", "second", "third"}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for i, name := range names {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(contents[i]))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/extract", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var results []*types.ExtractionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 3)
	for i, want := range contents {
		assert.Equal(t, want, results[i].Content)
	}
}

func TestExtractEndpointNoFiles(t *testing.T) {
	srv := newTestServer(t)

	req := multipartRequest(t, map[string]string{}, "")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var errResp server.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "ValidationError", errResp.ErrorType)
	assert.Equal(t, http.StatusBadRequest, errResp.StatusCode)
}

func TestExtractEndpointInvalidConfig(t *testing.T) {
	srv := newTestServer(t)

	req := multipartRequest(t, map[string]string{"hello.txt": "hi"}, "{not valid json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCacheStatsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/cache/stats", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Contains(t, stats, "total_files")
}

func TestCacheClearEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodDelete, "/cache/clear", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp server.CacheClearResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.GreaterOrEqual(t, resp.RemovedFiles, 0)
}

func newBenchServer(b *testing.B) *server.Server {
	b.Helper()
	opts := kreuzberg.DefaultOptions()
	opts.CacheDir = b.TempDir()
	engine, err := kreuzberg.New(opts)
	if err != nil {
		b.Fatal(err)
	}
	return server.NewServer(&server.Config{Address: ":8080", Debug: false}, engine)
}

func BenchmarkExtractPlainText(b *testing.B) {
	srv := newBenchServer(b)
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, _ := w.CreateFormFile("files", "bench.txt")
	part.Write([]byte("benchmark content"))
	w.Close()
	payload := body.Bytes()
	contentType := w.FormDataContentType()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, "/extract", bytes.NewReader(payload))
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
	}
}

func BenchmarkHealth(b *testing.B) {
	srv := newBenchServer(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
	}
}
