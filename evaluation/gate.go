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

import "fmt"

// GateConstraints are the hard requirements a run must satisfy before a
// build may be promoted.
type GateConstraints struct {
	// MinPassRate is the minimum overall pass rate, e.g. 0.85.
	MinPassRate float64 `json:"min_pass_rate"`

	// MaxHighPriorityFailures is the maximum number of failed high-priority
	// cases tolerated, conventionally 0.
	MaxHighPriorityFailures int `json:"max_high_priority_failures"`
}

// GateDecision is the deployment gate's verdict.
type GateDecision struct {
	// Pass reports whether the build may be promoted.
	Pass bool `json:"pass"`

	// Reasons enumerates every violated constraint. Non-empty whenever Pass
	// is false.
	Reasons []string `json:"reasons,omitempty"`
}

// Decide checks the latest run's statistics against the gate constraints.
//
// Decide is total: it never errors and always returns a decision, with one
// explanatory reason appended per violated constraint rather than a single
// generic failure.
func Decide(latest RunStats, constraints GateConstraints) GateDecision {
	var reasons []string

	if latest.PassRate < constraints.MinPassRate {
		reasons = append(reasons, fmt.Sprintf(
			"overall pass rate %.2f below minimum %.2f (%d/%d passed)",
			latest.PassRate, constraints.MinPassRate, latest.Passed, latest.Total))
	}

	if n := len(latest.HighPriorityFailures); n > constraints.MaxHighPriorityFailures {
		reasons = append(reasons, fmt.Sprintf(
			"%d high-priority failure(s) exceed maximum %d: %v",
			n, constraints.MaxHighPriorityFailures, latest.HighPriorityFailures))
	}

	return GateDecision{Pass: len(reasons) == 0, Reasons: reasons}
}
