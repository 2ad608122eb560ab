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

// Package evaluation implements composite scoring and quality gating for
// LLM-backed support chatbots.
//
// The package scores one evaluated case along several independent quality
// dimensions (accuracy, empathy, safety, ...), combines the dimension scores
// into a single pass/fail decision, aggregates per-case decisions into
// run-level statistics, and tracks those statistics over time to detect
// regressions and gate deployments.
//
// # Core Concepts
//
// Dimension: one independently scored quality axis.
//
// MetricSpec / Registry: validated, immutable configuration mapping each
// dimension to its pass threshold, aggregation weight, and critical flag.
//
// CompositeScorer: combines per-dimension scores for one case into a
// composite score and a pass/fail decision under an explicit policy
// (weighted average, all-must-pass, or hybrid critical+weighted). A critical
// dimension below its threshold forces composite 0.0 and failure regardless
// of all other scores.
//
// Aggregate: folds the ordered case results of one run into RunStats
// (overall and per-category pass rates, per-dimension averages,
// high-priority failures).
//
// DetectRegressions: walks an append-only run history and flags drops beyond
// a tolerated delta between consecutive runs.
//
// Decide: the deployment gate. Checks the latest RunStats against hard
// constraints and returns a decision with one reason per violated
// constraint.
//
// All functions in this package are pure and synchronous. They may be called
// concurrently as long as inputs are treated as immutable snapshots; the run
// history in particular is append-only and must be copied on read by
// consumers.
//
// Judge invocation, sampling of production traffic, and persistence live in
// the subpackages llmjudge, sampling, and storage.
package evaluation
