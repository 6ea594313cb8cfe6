// Package config reads process-wide settings from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/valpere/arxenrich/internal/moderation"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

type Config struct {
	ModelName     string `mapstructure:"model_name"`
	Language      string `mapstructure:"language"`
	Provider      string `mapstructure:"provider"`
	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	OpenAIBaseURL string `mapstructure:"openai_base_url"`
	OllamaBaseURL string `mapstructure:"ollama_base_url"`
	ModerationURL string `mapstructure:"moderation_url"`
}

var defaults = map[string]string{
	"model_name":      "deepseek-chat",
	"language":        "Chinese",
	"provider":        ProviderOpenAI,
	"openai_api_key":  "",
	"openai_base_url": "https://api.openai.com/v1",
	"ollama_base_url": "http://localhost:11434",
	"moderation_url":  moderation.DefaultURL,
}

// Load reads MODEL_NAME, LANGUAGE, PROVIDER, OPENAI_API_KEY, OPENAI_BASE_URL,
// OLLAMA_BASE_URL and MODERATION_URL. Unset or empty variables take their
// defaults.
func Load() (*Config, error) {
	v := viper.New()
	// Empty variables count as unset.
	v.AllowEmptyEnv(false)
	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch cfg.Provider {
	case ProviderOpenAI, ProviderOllama:
	default:
		return nil, fmt.Errorf("unknown provider %q (want %s or %s)", cfg.Provider, ProviderOpenAI, ProviderOllama)
	}
	return &cfg, nil
}
