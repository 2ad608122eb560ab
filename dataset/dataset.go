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

// Package dataset defines the golden evaluation dataset: the cases a run
// executes, their JSON persistence, and the flywheel that turns failed
// results into candidate cases for the next dataset revision.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/evalgate/evalgate/evaluation"
)

// ErrInvalidCase indicates a case failed validation.
var ErrInvalidCase = errors.New("dataset: invalid case")

// Case is one golden evaluation case.
type Case struct {
	// ID uniquely identifies the case within the dataset.
	ID string `json:"id"`

	// Input is the customer message sent to the chatbot.
	Input string `json:"input"`

	// Expected describes the expected behavior, passed to the judge as a
	// reference. May be empty.
	Expected string `json:"expected,omitempty"`

	// Category groups cases for per-category pass rates, e.g. "billing".
	Category string `json:"category"`

	// Priority weighs the case in gate decisions.
	Priority evaluation.Priority `json:"priority"`

	// Context carries prior conversation turns, oldest first.
	Context []string `json:"context,omitempty"`

	// Source records where the case came from, e.g. "handwritten" or
	// "flywheel". Informational only.
	Source string `json:"source,omitempty"`
}

// Validate reports whether the case is well formed.
func (c Case) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidCase)
	}
	if c.Input == "" {
		return fmt.Errorf("%w: case %q has empty input", ErrInvalidCase, c.ID)
	}
	if c.Category == "" {
		return fmt.Errorf("%w: case %q has empty category", ErrInvalidCase, c.ID)
	}
	if !c.Priority.Valid() {
		return fmt.Errorf("%w: case %q has unknown priority %q", ErrInvalidCase, c.ID, c.Priority)
	}
	return nil
}

// Load reads and validates a JSON dataset file. Duplicate case IDs are
// rejected.
func Load(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: failed to read %s: %w", path, err)
	}
	var cases []Case
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("dataset: failed to parse %s: %w", path, err)
	}
	seen := make(map[string]bool, len(cases))
	for _, c := range cases {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidCase, c.ID)
		}
		seen[c.ID] = true
	}
	return cases, nil
}

// Save writes cases to a JSON dataset file.
func Save(path string, cases []Case) error {
	for _, c := range cases {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(cases, "", "  ")
	if err != nil {
		return fmt.Errorf("dataset: failed to marshal cases: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("dataset: failed to write %s: %w", path, err)
	}
	return nil
}
