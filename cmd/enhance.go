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
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valpere/arxenrich/internal/config"
	"github.com/valpere/arxenrich/internal/enhancer"
	"github.com/valpere/arxenrich/internal/loader"
	"github.com/valpere/arxenrich/internal/moderation"
	"github.com/valpere/arxenrich/internal/prompt"
	"github.com/valpere/arxenrich/internal/store"
	"github.com/valpere/arxenrich/internal/validator"
	"github.com/valpere/arxenrich/internal/writer"
)

var (
	dataFile     string
	maxWorkers   int
	systemPath   string
	templatePath string
	dbPath       string
	noCache      bool
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance",
	Short: "Annotate a JSONL file of arXiv records with LLM commentary",
	Long: `Read records from --data, generate a structured commentary for every
abstract and write the surviving records next to the input as
<name>_AI_enhanced_<LANGUAGE>.jsonl.

Environment:
  MODEL_NAME        model to call (default deepseek-chat)
  LANGUAGE          output language (default Chinese)
  PROVIDER          openai or ollama (default openai)
  OPENAI_API_KEY    key for the OpenAI-compatible endpoint
  OPENAI_BASE_URL   OpenAI-compatible endpoint
  OLLAMA_BASE_URL   Ollama endpoint
  MODERATION_URL    content-safety classifier`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		prompts, err := prompt.Load(systemPath, templatePath)
		if err != nil {
			return err
		}

		gen, err := buildGenerator(cfg)
		if err != nil {
			return err
		}

		records, err := loader.Load(dataFile)
		if err != nil {
			return err
		}
		loaded := len(records)
		records, removed := loader.Dedup(records)
		logger.Info("loaded records",
			zap.String("file", dataFile),
			zap.Int("records", loaded),
			zap.Int("duplicates", removed))

		outputPath := writer.OutputPath(dataFile, cfg.Language)
		if err := writer.RemoveStale(outputPath); err != nil {
			return err
		}

		var db *store.Store
		var runID string
		if !noCache && dbPath != "" {
			if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
			db, err = store.New(dbPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()

			runID, err = db.CreateRun(ctx, dataFile, outputPath, cfg.Language, gen.Model())
			if err != nil {
				logger.Warn("failed to record run", zap.Error(err))
				runID = ""
			}
		}

		ecfg := enhancer.Config{
			Workers:  maxWorkers,
			Language: cfg.Language,
			Prompt:   prompts,
			Checker:  validator.New(),
			Logger:   logger,
		}
		if db != nil {
			ecfg.Cache = db
		}

		gate := moderation.NewHTTPGate(cfg.ModerationURL, logger)
		outcomes := enhancer.New(gen, gate, ecfg).Run(ctx, records)
		kept := enhancer.Kept(outcomes)

		if err := writer.Write(outputPath, kept); err != nil {
			if db != nil && runID != "" {
				_ = db.CompleteRun(ctx, runID, "failed")
			}
			return err
		}

		if db != nil && runID != "" {
			recordLedger(ctx, db, runID, outcomes)
		}

		s := enhancer.Summarize(outcomes)
		fmt.Printf("Enhanced %s with %s (%s)\n", dataFile, gen.Model(), cfg.Language)
		fmt.Printf("Loaded: %d, duplicates removed: %d\n", loaded, removed)
		fmt.Printf("Kept: %d/%d (dropped: %d summary, %d output)\n", s.Kept, s.Total, s.DroppedSummary, s.DroppedOutput)
		fmt.Printf("Repaired: %d, defaulted: %d, cached: %d\n", s.Repaired, s.Defaulted, s.Cached)
		fmt.Printf("Output: %s\n", outputPath)
		return nil
	},
}

// recordLedger persists every terminal state. Ledger failures are logged,
// never returned.
func recordLedger(ctx context.Context, db *store.Store, runID string, outcomes []enhancer.Outcome) {
	for _, o := range outcomes {
		detail := string(o.Source)
		if o.Cached {
			detail = "cached"
		}
		if err := db.SaveOutcome(ctx, runID, o.Record.ID, string(o.State), detail); err != nil {
			logger.Warn("failed to record outcome", zap.String("id", o.Record.ID), zap.Error(err))
		}
	}
	if err := db.CompleteRun(ctx, runID, "completed"); err != nil {
		logger.Warn("failed to complete run", zap.Error(err))
	}
}

func init() {
	rootCmd.AddCommand(enhanceCmd)

	enhanceCmd.Flags().StringVar(&dataFile, "data", "", "JSONL file of harvested records (required)")
	enhanceCmd.Flags().IntVar(&maxWorkers, "max_workers", 1, "Maximum number of records processed in parallel")
	enhanceCmd.Flags().StringVar(&systemPath, "system", "", "File overriding the built-in system prompt")
	enhanceCmd.Flags().StringVar(&templatePath, "template", "", "File overriding the built-in prompt template ({language}, {content})")
	enhanceCmd.Flags().StringVar(&dbPath, "db", defaultDBPath, "SQLite database for the enrichment cache and run ledger")
	enhanceCmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable the enrichment cache and run ledger")

	enhanceCmd.MarkFlagRequired("data")
}
