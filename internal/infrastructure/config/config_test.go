package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
providers:
  amazon:
    enabled: true
    year: 2023
    max_pages: 5
    concurrency: 8
    rate_limit: 1.5
  costco:
    enabled: false
    year: 2022
  walmart:
    enabled: true
    rate_limit: 0.5
session:
  cookie_file: "/tmp/cookies.json"
storage:
  database_path: "orders.db"
api:
  port: 9090
  allowed_origins:
    - "http://localhost:3000"
    - "https://app.example.com"
observability:
  logging:
    level: debug
    format: text
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Providers.Amazon.Enabled)
	assert.Equal(t, 2023, cfg.Providers.Amazon.Year)
	assert.Equal(t, 5, cfg.Providers.Amazon.MaxPages)
	assert.Equal(t, 8, cfg.Providers.Amazon.Concurrency)
	assert.Equal(t, 1.5, cfg.Providers.Amazon.RateLimit)

	assert.False(t, cfg.Providers.Costco.Enabled)
	assert.Equal(t, 2022, cfg.Providers.Costco.Year)

	assert.True(t, cfg.Providers.Walmart.Enabled)
	assert.Equal(t, 0.5, cfg.Providers.Walmart.RateLimit)

	assert.Equal(t, "/tmp/cookies.json", cfg.Session.CookieFile)
	assert.Equal(t, "orders.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.API.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("SYNC_DB_PATH", "test.db")
	os.Setenv("SYNC_COOKIE_FILE", "test-cookies.json")
	os.Setenv("API_PORT", "9999")
	os.Setenv("AMAZON_MAX_PAGES", "3")
	defer func() {
		os.Unsetenv("SYNC_DB_PATH")
		os.Unsetenv("SYNC_COOKIE_FILE")
		os.Unsetenv("API_PORT")
		os.Unsetenv("AMAZON_MAX_PAGES")
	}()

	cfg := LoadFromEnv()
	assert.NotNil(t, cfg)
	assert.Equal(t, "test.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "test-cookies.json", cfg.Session.CookieFile)
	assert.Equal(t, 9999, cfg.API.Port)
	assert.Equal(t, 3, cfg.Providers.Amazon.MaxPages)
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	os.Unsetenv("SYNC_DB_PATH")
	os.Unsetenv("SYNC_COOKIE_FILE")
	os.Unsetenv("API_PORT")

	cfg := LoadFromEnv()
	assert.NotNil(t, cfg)
	assert.Equal(t, "order_sync.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "cookies.json", cfg.Session.CookieFile)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.True(t, cfg.Providers.Amazon.Enabled)
	assert.True(t, cfg.Providers.Costco.Enabled)
	assert.True(t, cfg.Providers.Walmart.Enabled)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
}

func TestLoadFromEnv_OriginList(t *testing.T) {
	os.Setenv("API_ALLOWED_ORIGINS", "http://localhost:3000, https://app.example.com,")
	defer os.Unsetenv("API_ALLOWED_ORIGINS")

	cfg := LoadFromEnv()
	assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.API.AllowedOrigins)
}

func TestLoadOrEnv_FallbackToEnv(t *testing.T) {
	os.Setenv("SYNC_DB_PATH", "fallback.db")
	defer os.Unsetenv("SYNC_DB_PATH")

	// Non-existent file falls back to environment
	cfg := LoadOrEnv_WithPath("nonexistent.yaml")
	assert.NotNil(t, cfg)
	assert.Equal(t, "fallback.db", cfg.Storage.DatabasePath)
}

func TestEnvVarExpansion(t *testing.T) {
	os.Setenv("TEST_DB_PATH", "expanded.db")
	os.Setenv("TEST_COOKIE_FILE", "expanded-cookies.json")
	defer func() {
		os.Unsetenv("TEST_DB_PATH")
		os.Unsetenv("TEST_COOKIE_FILE")
	}()

	path := writeConfig(t, `
storage:
  database_path: "${TEST_DB_PATH}"
session:
  cookie_file: "${TEST_COOKIE_FILE}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "expanded.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "expanded-cookies.json", cfg.Session.CookieFile)
}

func TestResolve(t *testing.T) {
	os.Setenv("TEST_RESOLVE_COOKIES", "from-env.json")
	defer os.Unsetenv("TEST_RESOLVE_COOKIES")

	cfg := &Config{}
	assert.Equal(t, "from-config.json", cfg.Resolve("from-config.json", "TEST_RESOLVE_COOKIES"))
	assert.Equal(t, "from-env.json", cfg.Resolve("", "TEST_RESOLVE_UNSET", "TEST_RESOLVE_COOKIES"))
	assert.Equal(t, "", cfg.Resolve("", "TEST_RESOLVE_UNSET"))
}
