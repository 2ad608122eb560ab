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
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evalgate/evalgate/evaluation"
	"github.com/evalgate/evalgate/evaluation/storage"
)

var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Check the latest run against the deployment gate (nonzero exit on FAIL)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		history, err := cfg.OpenHistory()
		if err != nil {
			return err
		}
		defer closeHistory(history)
		latest, err := storage.Latest(cmd.Context(), history)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("no runs recorded yet; run `evalgate run` first")
			}
			return err
		}

		decision := evaluation.Decide(latest, cfg.GateConstraints())
		if decision.Pass {
			fmt.Printf("PASS: run %s (pass rate %.1f%%)\n", latest.RunID, latest.PassRate*100)
			return nil
		}
		fmt.Printf("FAIL: run %s\n", latest.RunID)
		for _, reason := range decision.Reasons {
			fmt.Printf("  - %s\n", reason)
		}
		return fmt.Errorf("deployment gate failed")
	},
}

func init() {
	rootCmd.AddCommand(gateCmd)
}
