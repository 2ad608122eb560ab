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

package llmjudge

import (
	"strings"
	"testing"

	"github.com/evalgate/evalgate/evaluation"
)

func TestBuildPrompt(t *testing.T) {
	t.Parallel()
	req := Request{
		Input:       "My order never arrived and support keeps hanging up on me.",
		Output:      "I'm sorry about that. Let me check the order status for you.",
		Context:     []string{"order 1234 shipped 2026-08-01"},
		Expected:    "Apologize and offer to track the order.",
		Dimension:   evaluation.DimensionEmpathy,
		Instruction: "Penalize scripted apologies.",
	}
	got := BuildPrompt(req)

	for _, want := range []string{
		req.Input,
		req.Output,
		"order 1234 shipped 2026-08-01",
		"Expected behavior:",
		"Rate the EMPATHY of the chatbot response on a scale of 0-10.",
		"Penalize scripted apologies.",
		`{"score": <0-10>, "reason": "<brief explanation>"}`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("BuildPrompt() missing %q in:\n%s", want, got)
		}
	}
}

func TestBuildPromptOmitsEmptySections(t *testing.T) {
	t.Parallel()
	req := Request{
		Input:     "How do I reset my password?",
		Output:    "Visit settings and click reset.",
		Dimension: evaluation.DimensionAccuracy,
	}
	got := BuildPrompt(req)
	if strings.Contains(got, "Conversation context:") {
		t.Errorf("BuildPrompt() includes context section for empty context:\n%s", got)
	}
	if strings.Contains(got, "Expected behavior:") {
		t.Errorf("BuildPrompt() includes expected section for empty expected:\n%s", got)
	}
	if strings.Contains(got, "Additional criteria:") {
		t.Errorf("BuildPrompt() includes instruction section for empty instruction:\n%s", got)
	}
}

func TestBuildPromptUnknownDimension(t *testing.T) {
	t.Parallel()
	req := Request{
		Input:     "hi",
		Output:    "hello",
		Dimension: evaluation.Dimension("tone"),
	}
	got := BuildPrompt(req)
	if !strings.Contains(got, "Rate the TONE of the chatbot response") {
		t.Errorf("BuildPrompt() does not rate the custom dimension:\n%s", got)
	}
	if strings.Contains(got, "Criteria:") {
		t.Errorf("BuildPrompt() includes builtin criteria for unknown dimension:\n%s", got)
	}
}
