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

package evaluation

import "time"

// CaseResult is the outcome of evaluating one test case within a run.
// Created once per (case, run) pair and immutable afterwards.
type CaseResult struct {
	// CaseID identifies the golden-dataset case.
	CaseID string `json:"case_id"`

	// Category tags the case for per-category pass rates, e.g. "billing".
	Category string `json:"category,omitempty"`

	// Priority is the case's business impact level.
	Priority Priority `json:"priority,omitempty"`

	// Scores maps dimension name to the judge's score for that dimension.
	Scores map[Dimension]DimensionScore `json:"scores"`

	// Composite is the derived aggregate score.
	Composite float64 `json:"composite"`

	// Passed is the derived case-level decision.
	Passed bool `json:"passed"`

	// FailingDimensions lists dimensions that individually failed their
	// threshold.
	FailingDimensions []Dimension `json:"failing_dimensions,omitempty"`

	// SystemFailure marks an infrastructure failure: the system under test
	// errored or timed out, so no quality judgment was possible. Such cases
	// count as failed in pass rates but are excluded from per-dimension
	// averages to avoid skewing quality metrics.
	SystemFailure bool `json:"system_failure,omitempty"`
}

// RunStats aggregates the statistics of one evaluation run. Appended to an
// ordered, append-only run history and never mutated after creation.
type RunStats struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// Timestamp records when the run completed.
	Timestamp time.Time `json:"timestamp"`

	// Total is the number of evaluated cases, including system failures.
	Total int `json:"total"`

	// Passed is the number of cases that passed.
	Passed int `json:"passed"`

	// PassRate is Passed / Total, 0 for an empty run.
	PassRate float64 `json:"pass_rate"`

	// CategoryPassRates maps case category to passed-in-category /
	// total-in-category.
	CategoryPassRates map[string]float64 `json:"category_pass_rates,omitempty"`

	// DimensionAverages maps dimension to the arithmetic mean of its raw
	// scores across the run's quality-scored cases (system failures and
	// unavailable scores excluded).
	DimensionAverages map[Dimension]float64 `json:"dimension_averages,omitempty"`

	// HighPriorityFailures lists the IDs of failed cases tagged
	// PriorityHigh.
	HighPriorityFailures []string `json:"high_priority_failures,omitempty"`
}
