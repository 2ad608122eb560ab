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
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evalgate/evalgate/evaluation/sampling"
	"github.com/evalgate/evalgate/evaluation/storage"
)

var (
	samplePolicy string
	sampleJSON   bool
)

var sampleCmd = &cobra.Command{
	Use:   "sample <requests.json>",
	Short: "Decide which production requests to evaluate under the budget",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read request log: %w", err)
		}
		var candidates []sampling.Request
		if err := json.Unmarshal(data, &candidates); err != nil {
			return fmt.Errorf("failed to parse request log: %w", err)
		}

		policy, err := cfg.SamplingPolicy()
		if err != nil {
			return err
		}
		if samplePolicy != "" {
			policy, err = sampling.ParsePolicy(samplePolicy)
			if err != nil {
				return err
			}
		}

		// The adaptive policy keys off the latest recorded pass rate.
		var recentQuality *float64
		if policy == sampling.PolicyAdaptive {
			history, err := cfg.OpenHistory()
			if err != nil {
				return err
			}
			defer closeHistory(history)
			if latest, err := storage.Latest(cmd.Context(), history); err == nil {
				recentQuality = &latest.PassRate
			}
		}

		sampler := sampling.New(cfg.SamplerConfig(), cfg.Sampling.Seed)
		decisions := sampler.Sample(candidates, policy, recentQuality)

		if sampleJSON {
			return json.NewEncoder(os.Stdout).Encode(decisions)
		}
		selected := sampling.Selected(decisions)
		fmt.Printf("policy %s: selected %d of %d candidates\n", policy, len(selected), len(candidates))
		for _, d := range decisions {
			mark := " "
			if d.Selected {
				mark = "*"
			}
			fmt.Printf("  %s %-20s %s\n", mark, d.RequestID, d.Rationale)
		}
		return nil
	},
}

func init() {
	sampleCmd.Flags().StringVar(&samplePolicy, "policy", "", "override the configured sampling policy")
	sampleCmd.Flags().BoolVar(&sampleJSON, "json", false, "print decisions as JSON")
	rootCmd.AddCommand(sampleCmd)
}
