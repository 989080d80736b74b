package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with an empty home so no real
// config or .env file leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())
	return dir
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.applyDerivedDefaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "vidlists-data.json", cfg.StorePath)
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.StoreDriver)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "vidlists-data.json", cfg.StorePath)
}

func TestLoadFromFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vidlists.json"),
		[]byte(`{"store_driver":"sqlite","log_level":"debug","requests_per_second":0}`), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, "vidlists.db", cfg.StorePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Zero(t, cfg.RequestsPerSecond)
}

func TestLoadFromExplicitPath(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"log_format":"json"}`), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)

	_, err = LoadFrom(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestLoadBadFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vidlists.json"), []byte(`{`), 0o600))

	_, err := Load()
	assert.ErrorContains(t, err, "parse vidlists.json")
}

func TestEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vidlists.json"),
		[]byte(`{"store_driver":"sqlite"}`), 0o600))

	t.Setenv("VIDLISTS_STORE_DRIVER", "REDIS")
	t.Setenv("VIDLISTS_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("VIDLISTS_HTTP_TIMEOUT", "5s")
	t.Setenv("VIDLISTS_REQUESTS_PER_SECOND", "2.5")
	t.Setenv("VIDLISTS_METRICS_FILE", "/tmp/vidlists.prom")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.StoreDriver)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 2.5, cfg.RequestsPerSecond)
	assert.Equal(t, "/tmp/vidlists.prom", cfg.MetricsFile)
	assert.Empty(t, cfg.StorePath)
}

func TestDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("VIDLISTS_LOG_LEVEL=warn\nVIDLISTS_USER_AGENT=from-dotenv\n"), 0o600))

	// Real environment wins over .env.
	t.Setenv("VIDLISTS_USER_AGENT", "from-env")
	// godotenv writes into the process environment; clean up after ourselves.
	t.Cleanup(func() { os.Unsetenv("VIDLISTS_LOG_LEVEL") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "from-env", cfg.UserAgent)
}

func TestBadEnvValues(t *testing.T) {
	for _, name := range []string{"VIDLISTS_HTTP_TIMEOUT", "VIDLISTS_REQUESTS_PER_SECOND", "VIDLISTS_SQLITE_POOL_SIZE"} {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			t.Setenv(name, "bogus")
			_, err := Load()
			assert.ErrorContains(t, err, name)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"relative catalog url", func(c *Config) { c.CatalogURL = "/api/videos" }},
		{"ftp catalog url", func(c *Config) { c.CatalogURL = "ftp://example.com/videos" }},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }},
		{"negative rps", func(c *Config) { c.RequestsPerSecond = -1 }},
		{"unknown driver", func(c *Config) { c.StoreDriver = "mongo" }},
		{"json without path", func(c *Config) { c.StorePath = "" }},
		{"redis without url", func(c *Config) { c.StoreDriver = "redis" }},
		{"postgres without dsn", func(c *Config) { c.StoreDriver = "postgres" }},
		{"zero pool", func(c *Config) { c.SQLitePoolSize = 0 }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.StorePath = "data.json"
			tc.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := DefaultConfig()
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		cfg.LogLevel = in
		got, err := cfg.SlogLevel()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
