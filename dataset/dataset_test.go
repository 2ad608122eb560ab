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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/evalgate/evalgate/evaluation"
)

func validCases() []Case {
	return []Case{
		{
			ID:       "billing-001",
			Input:    "Why was I charged twice this month?",
			Expected: "Apologize, explain the duplicate charge, offer a refund.",
			Category: "billing",
			Priority: evaluation.PriorityHigh,
		},
		{
			ID:       "technical-001",
			Input:    "The app crashes when I open settings.",
			Category: "technical",
			Priority: evaluation.PriorityMedium,
			Context:  []string{"I already reinstalled the app.", "Thanks for confirming, let me check."},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "golden.json")
	want := validCases()
	if err := Save(path, want); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "not json",
			content: "id,input\nbilling-001,hello",
		},
		{
			name:    "empty id",
			content: `[{"id": "", "input": "hi", "category": "billing", "priority": "high"}]`,
		},
		{
			name:    "empty input",
			content: `[{"id": "a", "input": "", "category": "billing", "priority": "high"}]`,
		},
		{
			name:    "unknown priority",
			content: `[{"id": "a", "input": "hi", "category": "billing", "priority": "urgent"}]`,
		},
		{
			name: "duplicate id",
			content: `[{"id": "a", "input": "hi", "category": "billing", "priority": "high"},
				{"id": "a", "input": "bye", "category": "billing", "priority": "low"}]`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "golden.json")
			if err := os.WriteFile(path, []byte(tc.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("Load(%s) succeeded, want error", tc.name)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	c := Case{ID: "x", Input: "hello", Category: "billing", Priority: "critical"}
	if err := c.Validate(); !errors.Is(err, ErrInvalidCase) {
		t.Errorf("Validate() error = %v, want ErrInvalidCase", err)
	}
}

func TestCollect(t *testing.T) {
	t.Parallel()
	interactions := []Interaction{
		{ID: "p1", Input: "Where is my refund?", Response: "Soon.", Category: "billing", UserReportedIssue: true},
		{ID: "p2", Input: "Reset my password please", Response: "Done.", Category: "account"},
		{ID: "p3", Input: "Your bot keeps looping", Response: "Transferring you.", Escalated: true},
		{ID: "p4", Input: "", UserReportedIssue: true},
	}
	got := Collect(interactions)
	want := []Case{
		{
			ID:       "flywheel-p1",
			Input:    "Where is my refund?",
			Expected: PlaceholderExpected,
			Category: "billing",
			Priority: evaluation.PriorityHigh,
			Source:   "flywheel",
		},
		{
			ID:       "flywheel-p3",
			Input:    "Your bot keeps looping",
			Expected: PlaceholderExpected,
			Category: "uncategorized",
			Priority: evaluation.PriorityMedium,
			Source:   "flywheel",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Collect() mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeAdditions(t *testing.T) {
	t.Parallel()
	existing := validCases()
	candidates := []Case{
		// Duplicate of billing-001 modulo case and whitespace.
		{ID: "flywheel-1", Input: "  why was I charged twice this month?  ", Category: "billing", Priority: evaluation.PriorityHigh},
		{ID: "flywheel-2", Input: "Can I change my plan mid-cycle?", Category: "billing", Priority: evaluation.PriorityMedium},
	}
	got := MergeAdditions(existing, candidates)
	if len(got) != len(existing)+1 {
		t.Fatalf("MergeAdditions() returned %d cases, want %d", len(got), len(existing)+1)
	}
	if got[len(got)-1].ID != "flywheel-2" {
		t.Errorf("MergeAdditions() appended %q, want flywheel-2", got[len(got)-1].ID)
	}
}
