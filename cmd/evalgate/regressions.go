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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evalgate/evalgate/evaluation"
)

var regressionsExitCode bool

var regressionsCmd = &cobra.Command{
	Use:   "regressions",
	Short: "Detect quality drops between adjacent recorded runs",
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
		runs, err := history.LoadAll(cmd.Context())
		if err != nil {
			return err
		}

		regressions := evaluation.DetectRegressions(runs, cfg.RegressionRules())
		if len(regressions) == 0 {
			fmt.Printf("no regressions across %d run(s)\n", len(runs))
			return nil
		}
		for _, reg := range regressions {
			switch reg.Quantity {
			case evaluation.QuantityPassRate:
				fmt.Printf("run %s: pass rate dropped %.2f -> %.2f (drop %.2f)\n",
					reg.RunID, reg.From, reg.To, reg.Drop)
			case evaluation.QuantityDimensionAverage:
				fmt.Printf("run %s: %s average dropped %.2f -> %.2f (drop %.2f)\n",
					reg.RunID, reg.Dimension, reg.From, reg.To, reg.Drop)
			}
		}
		if regressionsExitCode {
			return fmt.Errorf("%d regression(s) detected", len(regressions))
		}
		return nil
	},
}

func init() {
	regressionsCmd.Flags().BoolVar(&regressionsExitCode, "exit-code", false, "exit nonzero when regressions are found")
	rootCmd.AddCommand(regressionsCmd)
}
