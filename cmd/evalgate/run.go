// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"google.golang.org/genai"

	"github.com/evalgate/evalgate/chatbot"
	"github.com/evalgate/evalgate/config"
	"github.com/evalgate/evalgate/dataset"
	"github.com/evalgate/evalgate/evaluation"
	"github.com/evalgate/evalgate/evaluation/llmjudge"
	"github.com/evalgate/evalgate/evaluation/storage"
	"github.com/evalgate/evalgate/runner"
	"github.com/evalgate/evalgate/telemetry"
)

var runJSON bool

var runCmd = &cobra.Command{
	Use:   "run <dataset.json>",
	Short: "Evaluate the chatbot against a golden dataset and record the run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cases, err := dataset.Load(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		tel, err := telemetry.New(ctx)
		if err != nil {
			return err
		}
		tel.SetGlobalOtelProviders()
		defer func() {
			_ = tel.Shutdown(context.Background())
		}()

		r, history, err := buildRunner(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeHistory(history)
		stats, results, err := r.Run(ctx, cases)
		if err != nil {
			return err
		}

		if runJSON {
			return json.NewEncoder(os.Stdout).Encode(struct {
				Stats   evaluation.RunStats     `json:"stats"`
				Results []evaluation.CaseResult `json:"results"`
			}{stats, results})
		}
		printRun(stats, results)
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print stats and results as JSON")
	rootCmd.AddCommand(runCmd)
}

func buildRunner(ctx context.Context, cfg *config.Config) (*runner.Runner, storage.History, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	bot, err := chatbot.New(chatbot.Config{
		Client:       client,
		Model:        cfg.Chatbot.Model,
		SystemPrompt: cfg.Chatbot.SystemPrompt,
		Timeout:      cfg.Chatbot.Timeout.Std(),
	})
	if err != nil {
		return nil, nil, err
	}

	judge, err := llmjudge.NewGenAIJudge(llmjudge.Config{
		Client:  client,
		Model:   cfg.Judge.Model,
		Timeout: cfg.Judge.Timeout.Std(),
	})
	if err != nil {
		return nil, nil, err
	}

	registry, err := cfg.Registry()
	if err != nil {
		return nil, nil, err
	}
	policy, err := cfg.CompositePolicy()
	if err != nil {
		return nil, nil, err
	}
	history, err := cfg.OpenHistory()
	if err != nil {
		return nil, nil, err
	}

	r, err := runner.New(runner.Config{
		Chatbot:          bot,
		Judge:            llmjudge.WithRetry(judge, cfg.Judge.Attempts, cfg.Judge.Backoff.Std()),
		Registry:         registry,
		Policy:           policy,
		OverallThreshold: cfg.OverallThreshold,
		Concurrency:      cfg.Runner.Concurrency,
		History:          history,
	})
	if err != nil {
		return nil, nil, err
	}
	return r, history, nil
}

func printRun(stats evaluation.RunStats, results []evaluation.CaseResult) {
	fmt.Printf("run %s: %d/%d passed (%.1f%%)\n", stats.RunID, stats.Passed, stats.Total, stats.PassRate*100)

	categories := make([]string, 0, len(stats.CategoryPassRates))
	for category := range stats.CategoryPassRates {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		fmt.Printf("  %-14s %.1f%%\n", category, stats.CategoryPassRates[category]*100)
	}

	for _, result := range results {
		if result.Passed {
			continue
		}
		label := "FAIL"
		if result.SystemFailure {
			label = "SYSTEM FAILURE"
		}
		fmt.Printf("  %s %s (composite %.2f, failing: %v)\n", label, result.CaseID, result.Composite, result.FailingDimensions)
	}
	if len(stats.HighPriorityFailures) > 0 {
		fmt.Printf("high-priority failures: %v\n", stats.HighPriorityFailures)
	}
}
