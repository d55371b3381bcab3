package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingEnv(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "127.0.0.1:8000", cfg.Address())

	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, 0.7, cfg.AI.Temperature)
	assert.Empty(t, cfg.AI.OpenAIKey)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.True(t, cfg.AutoSave.Enabled)
	assert.Equal(t, time.Minute, cfg.AutoSave.Interval)
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load(missingEnv(t))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Server, cfg.Server)
	assert.Equal(t, def.Storage, cfg.Storage)
	assert.Equal(t, def.AutoSave, cfg.AutoSave)
	assert.Equal(t, def.RateLimit, cfg.RateLimit)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":              "9000",
		"HOST":              "0.0.0.0",
		"AI_PROVIDER":       "anthropic",
		"AI_MODEL":          "claude-3-5-haiku",
		"AI_TEMPERATURE":    "0.2",
		"ANTHROPIC_API_KEY": "sk-test",
		"LOG_LEVEL":         "debug",
		"LOG_FILE":          "/tmp/docstudio.log",
		"RATE_LIMIT_RPS":    "5",
		"AUTOSAVE_INTERVAL": "30s",
		"STORAGE_ROOT":      "/var/lib/docstudio",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load(missingEnv(t))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Address())
	assert.Equal(t, "anthropic", cfg.AI.Provider)
	assert.Equal(t, "claude-3-5-haiku", cfg.AI.Model)
	assert.Equal(t, 0.2, cfg.AI.Temperature)
	assert.Equal(t, "sk-test", cfg.AI.AnthropicKey)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/tmp/docstudio.log", cfg.Logging.File)
	assert.Equal(t, 5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 30*time.Second, cfg.AutoSave.Interval)
	assert.Equal(t, "/var/lib/docstudio", cfg.Storage.Root)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("GOOGLE_API_KEY=from-file\nPORT=7000\n"), 0o600))

	// the process environment wins over the file
	t.Setenv("PORT", "7001")
	t.Cleanup(func() { os.Unsetenv("GOOGLE_API_KEY") })

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.AI.GoogleKey)
	assert.Equal(t, "7001", cfg.Server.Port)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("AI_TEMPERATURE", "warm")

	_, err := Load(missingEnv(t))
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, 0.7, cfg.AI.Temperature)
}
