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

// The evalgate command evaluates an LLM support chatbot against a golden
// dataset and gates deployments on the results.
package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/evalgate/evalgate/config"
	"github.com/evalgate/evalgate/evaluation/storage"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "evalgate",
	Short:         "Evaluation and quality gating for an LLM support chatbot",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "evalgate.yaml", "path to the configuration file")
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// closeHistory releases backends that hold a connection, such as SQLite.
func closeHistory(h storage.History) {
	if c, ok := h.(io.Closer); ok {
		_ = c.Close()
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
