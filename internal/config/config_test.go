package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("CONFIG_FILE", filepath.Join(dir, "missing.toml"))
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "gemini-1.5-flash", cfg.LLM.GeminiModel)
	assert.Equal(t, 3, cfg.Analysis.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Analysis.RetryDelay.Duration)
	assert.Equal(t, 5, cfg.Maps.MaxResults)
	assert.Equal(t, "https://maps.googleapis.com", cfg.Maps.BaseURL)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	body := `
[app]
port = 9090

[analysis]
retry_delay = "5s"

[maps]
max_results = 3
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("GOOGLE_MAPS_MAX_RESULTS", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, 5*time.Second, cfg.Analysis.RetryDelay.Duration)
	assert.Equal(t, 4, cfg.Maps.MaxResults)
	assert.Equal(t, "gem-key", cfg.LLM.GeminiAPIKey)
}

func TestLoadRejectsBadFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[analysis]\nretry_delay = \"soon\"\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	require.Error(t, err)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := isolate(t)
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("GOOGLE_MAPS_API_KEY=maps-from-dotenv\n"), 0o600))
	t.Setenv("ENV_FILE", envPath)
	// register for cleanup; godotenv sets it with os.Setenv
	t.Setenv("GOOGLE_MAPS_API_KEY", "")
	require.NoError(t, os.Unsetenv("GOOGLE_MAPS_API_KEY"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "maps-from-dotenv", cfg.Maps.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "gemini without key",
			mutate:  func(c *Config) {},
			wantErr: ErrMissingAIKey,
		},
		{
			name:   "gemini with key",
			mutate: func(c *Config) { c.LLM.GeminiAPIKey = "k" },
		},
		{
			name: "openai without key",
			mutate: func(c *Config) {
				c.LLM.Provider = ProviderOpenAI
				c.LLM.GeminiAPIKey = "k"
			},
			wantErr: ErrMissingAIKey,
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.LLM.Provider = "bard" },
			wantErr: ErrUnknownProvider,
		},
		{
			name: "zero attempts",
			mutate: func(c *Config) {
				c.LLM.GeminiAPIKey = "k"
				c.Analysis.MaxAttempts = 0
			},
			wantErr: ErrInvalidRetryRule,
		},
		{
			name: "missing maps key is allowed",
			mutate: func(c *Config) {
				c.LLM.GeminiAPIKey = "k"
				c.Maps.APIKey = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
