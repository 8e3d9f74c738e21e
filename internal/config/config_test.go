package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astroflix-site/reistream/internal/api"
	"github.com/astroflix-site/reistream/internal/updater"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, api.DefaultBaseURL, cfg.APIURL)
	assert.Equal(t, updater.DefaultReleasesURL, cfg.ReleasesURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.SkipUpdateCheck)
	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, "reistream", filepath.Base(cfg.DataDir))
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFrom(map[string]string{
		"REISTREAM_API_URL":           "http://localhost:8888/api",
		"REISTREAM_DATA_DIR":          dir,
		"REISTREAM_DEBUG":             "true",
		"REISTREAM_HTTP_TIMEOUT":      "5s",
		"REISTREAM_SKIP_UPDATE_CHECK": "1",
		"REISTREAM_RELEASES_URL":      "http://localhost:9999/latest",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8888/api", cfg.APIURL)
	assert.Equal(t, dir, cfg.DataDir)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.SkipUpdateCheck)
	assert.Equal(t, "http://localhost:9999/latest", cfg.ReleasesURL)
	assert.Equal(t, filepath.Join(dir, DatabaseFile), cfg.DatabasePath())
}

func TestLoadIgnoresUnprefixedVariables(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"API_URL": "http://elsewhere"})
	require.NoError(t, err)
	assert.Equal(t, api.DefaultBaseURL, cfg.APIURL)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	_, err := LoadFrom(map[string]string{"REISTREAM_HTTP_TIMEOUT": "soon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config")

	_, err = LoadFrom(map[string]string{"REISTREAM_DEBUG": "maybe"})
	assert.Error(t, err)
}
