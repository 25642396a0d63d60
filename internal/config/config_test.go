package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "BODY_LIMIT", "REDIS_ENABLED", "AUTH_ENABLED", "RATELIMIT_PANEL_PER_MIN",
		"OPENAI_TEXT_TIMEOUT", "OPENAI_IMAGE_TIMEOUT", "STORYBOARD_PANEL_PARALLELISM", "STORYBOARD_PANEL_INTERVAL", "R2_ACCOUNT_ID"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3002", cfg.Server.Port)
	assert.Equal(t, 10*1024*1024, cfg.Server.BodyLimit)
	assert.Zero(t, cfg.OpenAI.TextTimeout)
	assert.Zero(t, cfg.OpenAI.ImageTimeout)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, 0, cfg.RateLimit.PanelPerMin)
	assert.Equal(t, 1, cfg.Storyboard.PanelParallelism)
	assert.Equal(t, 2*time.Second, cfg.Storyboard.PanelInterval)
	assert.False(t, cfg.R2.Configured())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("STORYBOARD_PANEL_PARALLELISM", "3")
	t.Setenv("STORYBOARD_PANEL_INTERVAL", "500ms")
	t.Setenv("R2_PUBLIC_URL", "https://cdn.example.com/")
	t.Setenv("OPENAI_IMAGE_TIMEOUT", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 3, cfg.Storyboard.PanelParallelism)
	assert.Equal(t, 500*time.Millisecond, cfg.Storyboard.PanelInterval)
	assert.Equal(t, "https://cdn.example.com", cfg.R2.PublicURL)
	assert.Equal(t, 90*time.Second, cfg.OpenAI.ImageTimeout)
}

func TestReadSecret_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openai_key")
	require.NoError(t, os.WriteFile(path, []byte("sk-from-file\n"), 0o600))

	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-from-file", cfg.OpenAI.APIKey)
}

func TestReadSecret_DirectValueWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gemini_key")
	require.NoError(t, os.WriteFile(path, []byte("from-file"), 0o600))

	t.Setenv("GEMINI_API_KEY", "direct")
	t.Setenv("GEMINI_API_KEY_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "direct", cfg.Gemini.APIKey)
}
