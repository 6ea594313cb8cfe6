/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"

	"github.com/valpere/arxenrich/internal/config"
	"github.com/valpere/arxenrich/internal/generator"
)

// defaultDBPath is shared by enhance and cache so both see the same store.
const defaultDBPath = "./data/arxenrich.db"

// buildGenerator constructs the generation backend selected by PROVIDER.
func buildGenerator(cfg *config.Config) (generator.Generator, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for provider %s", cfg.Provider)
		}
		return generator.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ModelName), nil
	case config.ProviderOllama:
		return generator.NewOllamaGenerator(cfg.OllamaBaseURL, cfg.ModelName), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}
