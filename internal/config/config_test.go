package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"ROCKS_CACHE_DIR", "ROCKS_QUAERO_URL", "ROCKS_CARD_URL",
		"ROCKS_INDEX_URL", "ROCKS_TIMEOUT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultQuaeroURL, cfg.QuaeroURL)
	assert.Equal(t, DefaultCardURL, cfg.CardURL)
	assert.Equal(t, DefaultIndexURL, cfg.IndexURL)
	assert.Equal(t, DefaultTimeout, cfg.HTTPTimeout())
	assert.NotEmpty(t, cfg.CacheDir, "cache dir should fall back to the platform default")
	assert.Equal(t, "rocks", filepath.Base(cfg.CacheDir))
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
cache_dir: /tmp/rocks-test
quaero_url: https://quaero.example/search
timeout: 5s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/rocks-test", cfg.CacheDir)
	assert.Equal(t, "https://quaero.example/search", cfg.QuaeroURL)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout())
	// Untouched fields keep their defaults.
	assert.Equal(t, DefaultCardURL, cfg.CardURL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
quaero_url: https://from-file.example
timeout: 5s
`)
	t.Setenv("ROCKS_QUAERO_URL", "https://from-env.example")
	t.Setenv("ROCKS_TIMEOUT", "90s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://from-env.example", cfg.QuaeroURL)
	assert.Equal(t, 90*time.Second, cfg.HTTPTimeout())
}

func TestLoad_EnvCacheDir(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	t.Setenv("ROCKS_CACHE_DIR", dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.CacheDir)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoad_MalformedYAML(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "cache_dir: [\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_BadDuration(t *testing.T) {
	clearEnv(t)

	t.Run("from file", func(t *testing.T) {
		path := writeConfig(t, "timeout: soon\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid duration")
	})

	t.Run("from env", func(t *testing.T) {
		t.Setenv("ROCKS_TIMEOUT", "-3s")
		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be positive")
	})
}

func TestDuration_String(t *testing.T) {
	assert.Equal(t, "30s", Duration(30*time.Second).String())
}
