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
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/evalgate/evalgate/server"
	"github.com/evalgate/evalgate/telemetry"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API over the recorded run history",
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

		tel, err := telemetry.New(cmd.Context())
		if err != nil {
			return err
		}
		tel.SetGlobalOtelProviders()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = tel.Shutdown(shutdownCtx)
		}()

		api, err := server.New(server.Config{
			History:     history,
			Rules:       cfg.RegressionRules(),
			Constraints: cfg.GateConstraints(),
		})
		if err != nil {
			return err
		}

		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		srv := &http.Server{
			Addr:              addr,
			Handler:           api.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		fmt.Printf("serving dashboard API on %s\n", addr)
		return srv.ListenAndServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
