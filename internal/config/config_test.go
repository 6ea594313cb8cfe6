package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for key := range defaults {
		t.Setenv(strings.ToUpper(key), "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "deepseek-chat", cfg.ModelName)
	assert.Equal(t, "Chinese", cfg.Language)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAIBaseURL)
	assert.Equal(t, "http://localhost:11434", cfg.OllamaBaseURL)
	assert.Equal(t, "https://spam.dw-dengwei.workers.dev", cfg.ModerationURL)
	assert.Empty(t, cfg.OpenAIAPIKey)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODEL_NAME", "qwen3:14b")
	t.Setenv("LANGUAGE", "English")
	t.Setenv("PROVIDER", "Ollama")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("MODERATION_URL", "http://127.0.0.1:9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "qwen3:14b", cfg.ModelName)
	assert.Equal(t, "English", cfg.Language)
	assert.Equal(t, ProviderOllama, cfg.Provider)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.ModerationURL)
}

func TestLoad_UnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROVIDER", "bard")

	_, err := Load()
	assert.ErrorContains(t, err, "unknown provider")
}
