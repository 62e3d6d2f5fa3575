package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("DRIVE_FOLDER_ID", "root-folder")
	t.Setenv("PROVIDER", "memory")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "root-folder", cfg.RootFolderID)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, 0, cfg.MaxDepth)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("TRAVERSAL_CONCURRENCY", "3")
	t.Setenv("TRAVERSAL_MAX_DEPTH", "5")
	t.Setenv("REQUEST_TIMEOUT", "15s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 5, cfg.MaxDepth)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_RequiresRootFolder(t *testing.T) {
	t.Setenv("PROVIDER", "memory")
	t.Setenv("DRIVE_FOLDER_ID", "")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "RootFolderID")
}

func TestLoad_GoogleDriveNeedsServiceAccount(t *testing.T) {
	t.Setenv("DRIVE_FOLDER_ID", "root-folder")
	t.Setenv("PROVIDER", "googledrive")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT", "")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "GoogleServiceAccount")
}

func TestLoad_RejectsBadValues(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TRAVERSAL_CONCURRENCY", "lots")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("TRAVERSAL_CONCURRENCY", "0")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("TRAVERSAL_CONCURRENCY", "2")
	t.Setenv("PORT", "99999")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_UnknownProvider(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PROVIDER", "dropbox")

	_, err := Load()

	assert.Error(t, err)
}
