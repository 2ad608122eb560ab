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

// Package server exposes a read-only dashboard API over the run history:
// stored runs, detected regressions, and the current deployment gate
// decision.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/evalgate/evalgate/evaluation"
	"github.com/evalgate/evalgate/evaluation/storage"
)

// Config wires the API to its data.
type Config struct {
	// History is the run-history store to serve.
	History storage.History

	// Rules drive the /api/regressions endpoint.
	Rules []evaluation.RegressionRule

	// Constraints drive the /api/gate endpoint.
	Constraints evaluation.GateConstraints
}

// API serves the dashboard endpoints.
type API struct {
	cfg Config
}

// New creates the API over the given history.
func New(cfg Config) (*API, error) {
	if cfg.History == nil {
		return nil, errors.New("server: nil history")
	}
	return &API{cfg: cfg}, nil
}

// Router returns the HTTP routes:
//
//	GET /api/runs        — all stored runs, oldest first
//	GET /api/runs/latest — the most recent run
//	GET /api/regressions — regressions across stored history
//	GET /api/gate        — gate decision for the latest run
func (a *API) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/runs", a.handleRuns).Methods(http.MethodGet)
	r.HandleFunc("/api/runs/latest", a.handleLatest).Methods(http.MethodGet)
	r.HandleFunc("/api/regressions", a.handleRegressions).Methods(http.MethodGet)
	r.HandleFunc("/api/gate", a.handleGate).Methods(http.MethodGet)
	return r
}

func (a *API) handleRuns(rw http.ResponseWriter, req *http.Request) {
	runs, err := a.cfg.History.LoadAll(req.Context())
	if err != nil {
		writeError(rw, http.StatusInternalServerError, err)
		return
	}
	writeJSON(rw, http.StatusOK, runs)
}

func (a *API) handleLatest(rw http.ResponseWriter, req *http.Request) {
	latest, err := storage.Latest(req.Context(), a.cfg.History)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(rw, http.StatusNotFound, err)
			return
		}
		writeError(rw, http.StatusInternalServerError, err)
		return
	}
	writeJSON(rw, http.StatusOK, latest)
}

func (a *API) handleRegressions(rw http.ResponseWriter, req *http.Request) {
	runs, err := a.cfg.History.LoadAll(req.Context())
	if err != nil {
		writeError(rw, http.StatusInternalServerError, err)
		return
	}
	regressions := evaluation.DetectRegressions(runs, a.cfg.Rules)
	if regressions == nil {
		regressions = []evaluation.Regression{}
	}
	writeJSON(rw, http.StatusOK, regressions)
}

func (a *API) handleGate(rw http.ResponseWriter, req *http.Request) {
	latest, err := storage.Latest(req.Context(), a.cfg.History)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(rw, http.StatusNotFound, err)
			return
		}
		writeError(rw, http.StatusInternalServerError, err)
		return
	}
	decision := evaluation.Decide(latest, a.cfg.Constraints)
	writeJSON(rw, http.StatusOK, struct {
		RunID    string                  `json:"run_id"`
		Decision evaluation.GateDecision `json:"decision"`
	}{RunID: latest.RunID, Decision: decision})
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	// Headers are already written; an encode failure has nowhere to go.
	_ = json.NewEncoder(rw).Encode(v)
}

func writeError(rw http.ResponseWriter, status int, err error) {
	writeJSON(rw, status, map[string]string{"error": err.Error()})
}
