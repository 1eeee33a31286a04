package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var requiredVars = []string{
	"AZURE_OPENAI_ENDPOINT",
	"AZURE_OPENAI_API_KEY",
	"AZURE_OPENAI_API_VERSION",
	"AZURE_SEARCH_ENDPOINT",
	"AZURE_SEARCH_KEY",
	"AZURE_SEARCH_INDEX",
	"AZURE_EMBEDDING_ENDPOINT",
	"AZURE_EMBEDDING_API_KEY",
}

func setRequired(t *testing.T) {
	t.Helper()
	for _, key := range requiredVars {
		t.Setenv(key, "value-for-"+key)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "models", cfg.ModelsDir)
	require.Equal(t, int64(20)*1024*1024, cfg.UploadMaxBytes)
	require.Equal(t, 2*time.Second, cfg.RateLimitWindow)
	require.Equal(t, 2*time.Hour, cfg.SessionTTL)
	require.Equal(t, "*/10 * * * *", cfg.SessionSweep)
	require.Equal(t, 90*time.Second, cfg.RequestTimeout)
	require.Equal(t, "gpt-4", cfg.OpenAI.Deployment)
	require.Equal(t, "2023-07-01-Preview", cfg.Search.APIVersion)
	require.Equal(t, "text-embedding-ada-002", cfg.Embedding.Deployment)
	require.Empty(t, cfg.FileStore.Type)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestFromEnv_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("RARA_PORT", "9090")
	t.Setenv("RARA_UPLOAD_MAX_MB", "5")
	t.Setenv("RARA_RATE_LIMIT_WINDOW", "500ms")
	t.Setenv("AZURE_DEPLOYMENT_NAME", "gpt-4o")
	t.Setenv("RARA_FILE_STORE", "local")

	cfg, err := FromEnv()
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, int64(5)*1024*1024, cfg.UploadMaxBytes)
	require.Equal(t, 500*time.Millisecond, cfg.RateLimitWindow)
	require.Equal(t, "gpt-4o", cfg.OpenAI.Deployment)
	require.Equal(t, "local", cfg.FileStore.Type)
}

func TestFromEnv_ReportsAllMissingVars(t *testing.T) {
	for _, key := range requiredVars {
		t.Setenv(key, "")
	}
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")

	_, err := FromEnv()
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing required configuration")
	require.NotContains(t, err.Error(), "AZURE_OPENAI_ENDPOINT")
	for _, key := range requiredVars[1:] {
		require.Contains(t, err.Error(), key)
	}
}

func TestFromEnv_InvalidNumbersFallBackToDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("RARA_PORT", "not-a-number")
	t.Setenv("RARA_SESSION_TTL", "eternity")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 2*time.Hour, cfg.SessionTTL)
}
