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

// Package storage persists evaluation run history. Three backends are
// provided: in-memory (tests), a single JSON file (local workflows), and
// SQLite (shared dashboards).
package storage

import (
	"context"
	"errors"

	"github.com/evalgate/evalgate/evaluation"
)

var (
	// ErrNotFound indicates the requested run was not found.
	ErrNotFound = errors.New("storage: not found")

	// ErrInvalidInput indicates invalid input parameters.
	ErrInvalidInput = errors.New("storage: invalid input")
)

// History persists run stats in append order. Regression detection
// depends on that order: LoadAll returns runs oldest first, exactly as
// appended.
type History interface {
	// Append stores one run's stats at the end of the history.
	Append(ctx context.Context, stats evaluation.RunStats) error

	// LoadAll returns all stored runs, oldest first.
	LoadAll(ctx context.Context) ([]evaluation.RunStats, error)
}

// Latest returns the most recently appended run, or ErrNotFound when the
// history is empty.
func Latest(ctx context.Context, h History) (evaluation.RunStats, error) {
	runs, err := h.LoadAll(ctx)
	if err != nil {
		return evaluation.RunStats{}, err
	}
	if len(runs) == 0 {
		return evaluation.RunStats{}, ErrNotFound
	}
	return runs[len(runs)-1], nil
}
