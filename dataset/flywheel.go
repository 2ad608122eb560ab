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

package dataset

import (
	"fmt"
	"strings"

	"github.com/evalgate/evalgate/evaluation"
)

// PlaceholderExpected marks a flywheel candidate whose expected behavior a
// human still has to write before the case enters the golden dataset.
const PlaceholderExpected = "TODO: review interaction and describe expected behavior"

// Interaction is one production conversation turn considered for
// promotion into the golden dataset.
type Interaction struct {
	// ID identifies the interaction in the production log.
	ID string `json:"id"`

	// Input is the customer message.
	Input string `json:"input"`

	// Response is what the chatbot answered.
	Response string `json:"response"`

	// Category is the support category the request was routed to.
	Category string `json:"category"`

	// Escalated reports whether the conversation ended in a human handoff.
	Escalated bool `json:"escalated"`

	// UserReportedIssue reports whether the customer flagged the answer as
	// wrong or unhelpful.
	UserReportedIssue bool `json:"user_reported_issue"`
}

// Collect selects high-signal interactions and turns them into candidate
// cases. An interaction is high-signal when the customer reported an issue
// or the conversation escalated to a human. Candidates carry a placeholder
// expected behavior and must be reviewed before use.
func Collect(interactions []Interaction) []Case {
	var candidates []Case
	for _, it := range interactions {
		if !it.UserReportedIssue && !it.Escalated {
			continue
		}
		if it.Input == "" {
			continue
		}
		priority := evaluation.PriorityMedium
		if it.UserReportedIssue {
			priority = evaluation.PriorityHigh
		}
		category := it.Category
		if category == "" {
			category = "uncategorized"
		}
		candidates = append(candidates, Case{
			ID:       fmt.Sprintf("flywheel-%s", it.ID),
			Input:    it.Input,
			Expected: PlaceholderExpected,
			Category: category,
			Priority: priority,
			Source:   "flywheel",
		})
	}
	return candidates
}

// MergeAdditions appends candidates whose input is not already covered by
// an existing case. Inputs are compared case-insensitively after trimming
// whitespace.
func MergeAdditions(existing, candidates []Case) []Case {
	seen := make(map[string]bool, len(existing))
	for _, c := range existing {
		seen[normalizeInput(c.Input)] = true
	}
	merged := existing
	for _, c := range candidates {
		key := normalizeInput(c.Input)
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, c)
	}
	return merged
}

func normalizeInput(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
