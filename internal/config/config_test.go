package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchforge/booksearch/internal/request"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BOOKSEARCH_SETTINGS", "BOOKSEARCH_API_URL", "BOOKSEARCH_PROXY_URL",
		"BOOKSEARCH_USE_PROXY", "PORT", "TIMEOUT_MS", "CORS_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, request.DefaultAPIURL, cfg.Settings.APIURL)
	assert.Equal(t, request.DefaultProxyURL, cfg.Settings.ProxyURL)
	assert.False(t, cfg.Settings.UseProxy)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, defaultPort, cfg.Port)
}

func TestLoadLayersFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
apiUrl: http://books.file:8000/
useProxy: true
debugHeaders:
  Origin: http://localhost
`), 0o600))

	clearEnv(t)
	t.Setenv("BOOKSEARCH_API_URL", "http://books.env")
	t.Setenv("TIMEOUT_MS", "2500")
	t.Setenv("CORS_ORIGINS", "http://a.local, http://b.local")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://books.env", cfg.Settings.APIURL)
	assert.True(t, cfg.Settings.UseProxy)
	assert.Equal(t, map[string]string{"Origin": "http://localhost"}, cfg.Settings.UnsafeDebugHeaders)
	assert.Equal(t, 2500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.CORSOrigins)
}

func TestLoadSettingsFileAcceptsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"apiUrl":"http://json.local","proxyUrl":"https://relay/"}`), 0o600))

	settings, err := LoadSettingsFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://json.local", settings.APIURL)
	assert.Equal(t, "https://relay/", settings.ProxyURL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
