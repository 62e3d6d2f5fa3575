package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learning-resources-backend/internal/config"
	"learning-resources-backend/internal/hierarchy"
	"learning-resources-backend/internal/preview"
)

func newTestApp(t *testing.T, staticDir string) *echo.Echo {
	t.Helper()
	client := hierarchy.NewMemoryClient().
		AddFolder("", "root", "Resources").
		AddFile("root", "f1", "Notes.pdf", "application/pdf")

	cfg := &config.Config{
		RootFolderID:   "root",
		Concurrency:    2,
		RequestTimeout: 5 * time.Second,
		CORSOrigins:    []string{"*"},
		StaticDir:      staticDir,
		MetricsEnabled: true,
	}

	e := echo.New()
	initialize(e, cfg, client)
	return e
}

func serve(e *echo.Echo, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestInitialize_RoutesWired(t *testing.T) {
	e := newTestApp(t, "")

	assert.Equal(t, http.StatusOK, serve(e, "/healthz").Code)
	assert.Equal(t, http.StatusOK, serve(e, "/api/resources/tree").Code)

	rec := serve(e, "/api/resources/all")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"f1","name":"Notes.pdf","mimeType":"application/pdf"}]`, rec.Body.String())

	assert.Equal(t, http.StatusOK, serve(e, "/api/preview/abcdefghijklmnop").Code)

	rec = serve(e, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "resources_traversal_duration_seconds")
}

func TestInitialize_ServesSPAWithFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644))

	e := newTestApp(t, dir)

	rec := serve(e, "/subjects/math")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "app")

	rec = serve(e, "/api/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHasPrefix(t *testing.T) {
	assert.True(t, hasPrefix("/api/resources/tree", "/api/", "/metrics"))
	assert.False(t, hasPrefix("/about", "/api/", "/metrics"))
}

func TestNewHierarchyClient_MemoryIsSeeded(t *testing.T) {
	cfg := &config.Config{Provider: config.ProviderMemory, RootFolderID: "root", PageSize: 2, RetryAttempts: 1}

	client, err := newHierarchyClient(context.Background(), cfg)
	require.NoError(t, err)

	root, err := client.GetNode(context.Background(), "root")
	require.NoError(t, err)
	assert.True(t, root.IsFolder())

	children, err := client.ListChildren(context.Background(), "root")
	require.NoError(t, err)
	assert.Equal(t, "Week 1", children[0].Name)
	assert.Len(t, children, 3)
}

func TestPreviewFormat(t *testing.T) {
	assert.Equal(t, preview.OneDrive, previewFormat(config.ProviderOneDrive))
	assert.Equal(t, preview.GoogleDrive, previewFormat(config.ProviderGoogleDrive))
	assert.Equal(t, preview.GoogleDrive, previewFormat(config.ProviderMemory))
}
