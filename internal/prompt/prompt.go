// Package prompt holds the immutable two-part prompt (system instructions
// plus content template) shared by every enrichment task.
package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed system.txt
var defaultSystem string

//go:embed template.txt
var defaultTemplate string

// Placeholders substituted at render time.
const (
	LanguagePlaceholder = "{language}"
	ContentPlaceholder  = "{content}"
)

// Config is read-only after construction and safe to share across workers.
type Config struct {
	system   string
	template string
}

// Default returns the built-in prompt.
func Default() *Config {
	return &Config{system: defaultSystem, template: defaultTemplate}
}

// Load reads prompt overrides from disk. Empty paths keep the built-in text.
func Load(systemPath, templatePath string) (*Config, error) {
	cfg := Default()
	if systemPath != "" {
		b, err := os.ReadFile(systemPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read system prompt: %w", err)
		}
		cfg.system = string(b)
	}
	if templatePath != "" {
		b, err := os.ReadFile(templatePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt template: %w", err)
		}
		cfg.template = string(b)
	}
	if !strings.Contains(cfg.template, ContentPlaceholder) {
		return nil, fmt.Errorf("prompt template has no %s placeholder", ContentPlaceholder)
	}
	return cfg, nil
}

// Render returns the system and user messages for one record.
func (c *Config) Render(language, content string) (system, user string) {
	// Language is substituted first so a {language} literal inside an
	// abstract is left untouched.
	system = strings.ReplaceAll(c.system, LanguagePlaceholder, language)
	user = strings.ReplaceAll(c.template, LanguagePlaceholder, language)
	user = strings.Replace(user, ContentPlaceholder, content, 1)
	return strings.TrimSpace(system), strings.TrimSpace(user)
}
