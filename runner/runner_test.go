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

package runner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/evalgate/evalgate/chatbot"
	"github.com/evalgate/evalgate/dataset"
	"github.com/evalgate/evalgate/evaluation"
	"github.com/evalgate/evalgate/evaluation/llmjudge"
	"github.com/evalgate/evalgate/evaluation/storage"
)

func testRegistry(t *testing.T) *evaluation.Registry {
	t.Helper()
	registry, err := evaluation.NewRegistry([]evaluation.MetricSpec{
		{Dimension: evaluation.DimensionAccuracy, Threshold: 0.8, Weight: 0.5},
		{Dimension: evaluation.DimensionEmpathy, Threshold: 0.6, Weight: 0.3},
		{Dimension: evaluation.DimensionSafety, Threshold: 0.9, Weight: 0.2, Critical: true},
	})
	if err != nil {
		t.Fatalf("NewRegistry() failed: %v", err)
	}
	return registry
}

func echoChatbot() chatbot.Chatbot {
	return chatbot.Func(func(ctx context.Context, input string, history []string) (string, error) {
		return "Thanks for reaching out. " + input, nil
	})
}

// scoreJudge returns fixed scores per dimension.
func scoreJudge(scores map[evaluation.Dimension]float64) llmjudge.Judge {
	return llmjudge.Func(func(ctx context.Context, req llmjudge.Request) (evaluation.DimensionScore, error) {
		value, ok := scores[req.Dimension]
		if !ok {
			return evaluation.DimensionScore{}, fmt.Errorf("unexpected dimension %q", req.Dimension)
		}
		return evaluation.DimensionScore{Dimension: req.Dimension, Score: value, Rationale: "fixed"}, nil
	})
}

func testCases(n int) []dataset.Case {
	cases := make([]dataset.Case, 0, n)
	for i := 0; i < n; i++ {
		cases = append(cases, dataset.Case{
			ID:       fmt.Sprintf("billing-%03d", i+1),
			Input:    "Why was I charged twice?",
			Category: "billing",
			Priority: evaluation.PriorityHigh,
		})
	}
	return cases
}

func TestRunAllPassing(t *testing.T) {
	t.Parallel()
	history := storage.NewMemoryHistory()
	r, err := New(Config{
		Chatbot: echoChatbot(),
		Judge: scoreJudge(map[evaluation.Dimension]float64{
			evaluation.DimensionAccuracy: 0.9,
			evaluation.DimensionEmpathy:  0.8,
			evaluation.DimensionSafety:   0.95,
		}),
		Registry: testRegistry(t),
		Policy:   evaluation.PolicyHybrid,
		History:  history,
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	stats, results, err := r.Run(context.Background(), testCases(4))
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if stats.Total != 4 || stats.Passed != 4 || stats.PassRate != 1.0 {
		t.Errorf("Run() stats = %+v, want 4/4 passed", stats)
	}
	if stats.RunID == "" || stats.Timestamp.IsZero() {
		t.Errorf("Run() stats missing run ID or timestamp: %+v", stats)
	}
	for _, result := range results {
		if !result.Passed {
			t.Errorf("case %s failed: %+v", result.CaseID, result)
		}
		want := 0.9*0.5 + 0.8*0.3 + 0.95*0.2
		if math.Abs(result.Composite-want) > 1e-9 {
			t.Errorf("case %s composite = %v, want %v", result.CaseID, result.Composite, want)
		}
	}

	stored, err := history.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}
	if len(stored) != 1 || stored[0].RunID != stats.RunID {
		t.Errorf("history = %+v, want single entry for run %s", stored, stats.RunID)
	}
}

func TestRunChatbotFailureBecomesSystemFailure(t *testing.T) {
	t.Parallel()
	calls := 0
	bot := chatbot.Func(func(ctx context.Context, input string, history []string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("backend 500")
		}
		return "All set.", nil
	})
	r, err := New(Config{
		Chatbot: bot,
		Judge: scoreJudge(map[evaluation.Dimension]float64{
			evaluation.DimensionAccuracy: 0.9,
			evaluation.DimensionEmpathy:  0.8,
			evaluation.DimensionSafety:   0.95,
		}),
		Registry: testRegistry(t),
		Policy:   evaluation.PolicyWeighted,
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	stats, results, err := r.Run(context.Background(), testCases(2))
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if !results[0].SystemFailure {
		t.Errorf("first case SystemFailure = false, want true")
	}
	if results[0].Passed || results[0].Composite != 0 {
		t.Errorf("system-failure case = %+v, want failed with composite 0", results[0])
	}
	for dim, score := range results[0].Scores {
		if !score.Unavailable {
			t.Errorf("system-failure score for %s not marked unavailable", dim)
		}
	}
	if results[1].SystemFailure || !results[1].Passed {
		t.Errorf("second case = %+v, want passing non-system-failure", results[1])
	}
	if stats.Total != 2 || stats.Passed != 1 {
		t.Errorf("stats = %+v, want 1/2 passed", stats)
	}
	// System failures stay out of dimension averages.
	if got := stats.DimensionAverages[evaluation.DimensionAccuracy]; got != 0.9 {
		t.Errorf("accuracy average = %v, want 0.9 from the surviving case only", got)
	}
}

func TestRunJudgeErrorBecomesUnavailable(t *testing.T) {
	t.Parallel()
	judge := llmjudge.Func(func(ctx context.Context, req llmjudge.Request) (evaluation.DimensionScore, error) {
		if req.Dimension == evaluation.DimensionEmpathy {
			return evaluation.DimensionScore{}, llmjudge.ErrUnavailable
		}
		return evaluation.DimensionScore{Dimension: req.Dimension, Score: 0.95}, nil
	})
	r, err := New(Config{
		Chatbot:  echoChatbot(),
		Judge:    judge,
		Registry: testRegistry(t),
		Policy:   evaluation.PolicyAllMustPass,
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	_, results, err := r.Run(context.Background(), testCases(1))
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	result := results[0]
	if !result.Scores[evaluation.DimensionEmpathy].Unavailable {
		t.Errorf("empathy score = %+v, want unavailable", result.Scores[evaluation.DimensionEmpathy])
	}
	if result.Scores[evaluation.DimensionAccuracy].Unavailable {
		t.Errorf("accuracy score unavailable, want sibling dimensions unaffected")
	}
	if result.Passed {
		t.Error("case passed despite unavailable dimension under all-must-pass")
	}
}

func TestRunBoundsJudgeConcurrency(t *testing.T) {
	t.Parallel()
	const limit = 2
	var inFlight, peak atomic.Int32
	judge := llmjudge.Func(func(ctx context.Context, req llmjudge.Request) (evaluation.DimensionScore, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return evaluation.DimensionScore{Dimension: req.Dimension, Score: 0.95}, nil
	})
	r, err := New(Config{
		Chatbot:     echoChatbot(),
		Judge:       judge,
		Registry:    testRegistry(t),
		Policy:      evaluation.PolicyWeighted,
		Concurrency: limit,
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if _, _, err := r.Run(context.Background(), testCases(3)); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if got := peak.Load(); got > limit {
		t.Errorf("peak in-flight judge calls = %d, want at most %d", got, limit)
	}
}

func TestRunEmptyCases(t *testing.T) {
	t.Parallel()
	r, err := New(Config{
		Chatbot:  echoChatbot(),
		Judge:    scoreJudge(map[evaluation.Dimension]float64{}),
		Registry: testRegistry(t),
		Policy:   evaluation.PolicyWeighted,
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	stats, results, err := r.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if stats.Total != 0 || len(results) != 0 {
		t.Errorf("Run() on empty dataset = %+v, %v, want zero stats", stats, results)
	}
	if stats.RunID == "" {
		t.Error("Run() on empty dataset missing run ID")
	}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()
	registry := testRegistry(t)
	judge := scoreJudge(nil)
	bot := echoChatbot()
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "nil chatbot", cfg: Config{Judge: judge, Registry: registry}},
		{name: "nil judge", cfg: Config{Chatbot: bot, Registry: registry}},
		{name: "nil registry", cfg: Config{Chatbot: bot, Judge: judge}},
		{name: "bad threshold", cfg: Config{Chatbot: bot, Judge: judge, Registry: registry, OverallThreshold: 1.5}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := New(tc.cfg); err == nil {
				t.Errorf("New(%s) succeeded, want error", tc.name)
			}
		})
	}
}

func TestRunCanceledContext(t *testing.T) {
	t.Parallel()
	r, err := New(Config{
		Chatbot: echoChatbot(),
		Judge: scoreJudge(map[evaluation.Dimension]float64{
			evaluation.DimensionAccuracy: 0.9,
			evaluation.DimensionEmpathy:  0.8,
			evaluation.DimensionSafety:   0.95,
		}),
		Registry: testRegistry(t),
		Policy:   evaluation.PolicyWeighted,
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := r.Run(ctx, testCases(2)); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
