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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/evalgate/evalgate/evaluation"
	"github.com/evalgate/evalgate/evaluation/sampling"
)

const fullConfig = `
metrics:
  - dimension: accuracy
    threshold: 0.8
    weight: 0.5
  - dimension: empathy
    threshold: 0.6
    weight: 0.3
    instruction: "Penalize scripted apologies."
  - dimension: safety
    threshold: 0.9
    weight: 0.2
    critical: true
policy: hybrid
overall_threshold: 0.75
gate:
  min_pass_rate: 0.85
  max_high_priority_failures: 0
regression:
  - quantity: pass_rate
    max_drop: 0.20
  - quantity: dimension_average
    dimension: empathy
    max_drop: 0.15
sampling:
  monthly_budget: 500
  cost_per_eval: 0.06
  policy: adaptive
  seed: 42
  high_priority_categories: [billing, cancellation]
  distress_keywords: [ridiculous, terrible, sue, complaint]
  adaptive_steps:
    - min_quality: 0.95
      rate: 0.05
    - min_quality: 0.85
      rate: 0.10
    - min_quality: 0.75
      rate: 0.25
  fallback_rate: 0.5
judge:
  model: gemini-2.5-flash
  attempts: 3
  backoff: 2s
  timeout: 45s
chatbot:
  model: gemini-2.5-pro
  system_prompt: "You are a support assistant."
runner:
  concurrency: 8
history:
  backend: sqlite
  path: runs.db
server:
  addr: ":9090"
`

func TestLoadFullConfig(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "evalgate.yaml")
	if err := os.WriteFile(path, []byte(fullConfig), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	registry, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry() failed: %v", err)
	}
	if registry.Len() != 3 {
		t.Errorf("Registry().Len() = %d, want 3", registry.Len())
	}
	spec, ok := registry.Spec(evaluation.DimensionSafety)
	if !ok || !spec.Critical {
		t.Errorf("safety spec = %+v, want critical", spec)
	}

	policy, err := cfg.CompositePolicy()
	if err != nil || policy != evaluation.PolicyHybrid {
		t.Errorf("CompositePolicy() = %v, %v, want hybrid", policy, err)
	}

	wantGate := evaluation.GateConstraints{MinPassRate: 0.85, MaxHighPriorityFailures: 0}
	if diff := cmp.Diff(wantGate, cfg.GateConstraints()); diff != "" {
		t.Errorf("GateConstraints() mismatch (-want +got):\n%s", diff)
	}

	rules := cfg.RegressionRules()
	if len(rules) != 2 {
		t.Fatalf("RegressionRules() = %v, want 2 rules", rules)
	}
	if rules[1].Quantity != evaluation.QuantityDimensionAverage || rules[1].Dimension != evaluation.DimensionEmpathy {
		t.Errorf("second rule = %+v, want empathy dimension_average", rules[1])
	}

	if cfg.Judge.Backoff.Std() != 2*time.Second {
		t.Errorf("judge backoff = %v, want 2s", cfg.Judge.Backoff.Std())
	}
	if cfg.Judge.Timeout.Std() != 45*time.Second {
		t.Errorf("judge timeout = %v, want 45s", cfg.Judge.Timeout.Std())
	}
	if cfg.Runner.Concurrency != 8 {
		t.Errorf("runner concurrency = %d, want 8", cfg.Runner.Concurrency)
	}

	samplerCfg := cfg.SamplerConfig()
	if got := samplerCfg.Budget.DailyEvalLimit(); got != 277 {
		t.Errorf("DailyEvalLimit() = %d, want 277", got)
	}
	if len(samplerCfg.AdaptiveSteps) != 3 || samplerCfg.AdaptiveSteps[0].Rate != 0.05 {
		t.Errorf("adaptive steps = %+v, want 3 configured steps", samplerCfg.AdaptiveSteps)
	}
	samplingPolicy, err := cfg.SamplingPolicy()
	if err != nil || samplingPolicy != sampling.PolicyAdaptive {
		t.Errorf("SamplingPolicy() = %v, %v, want adaptive", samplingPolicy, err)
	}
}

func TestParseDefaults(t *testing.T) {
	t.Parallel()
	minimal := `
metrics:
  - dimension: accuracy
    threshold: 0.8
    weight: 1.0
`
	cfg, err := Parse([]byte(minimal))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if cfg.Policy != "hybrid" {
		t.Errorf("default policy = %q, want hybrid", cfg.Policy)
	}
	if cfg.OverallThreshold != evaluation.DefaultOverallThreshold {
		t.Errorf("default overall threshold = %v, want %v", cfg.OverallThreshold, evaluation.DefaultOverallThreshold)
	}
	if cfg.Gate.MinPassRate != 0.85 || cfg.Gate.MaxHighPriorityFailures != 0 {
		t.Errorf("default gate = %+v, want 0.85 / 0", cfg.Gate)
	}
	if cfg.Judge.Attempts != 3 || cfg.Judge.Backoff.Std() != time.Second {
		t.Errorf("default judge = %+v, want 3 attempts / 1s backoff", cfg.Judge)
	}
	if cfg.Runner.Concurrency != 4 {
		t.Errorf("default concurrency = %d, want 4", cfg.Runner.Concurrency)
	}
	if cfg.History.Backend != "file" || cfg.History.Path == "" {
		t.Errorf("default history = %+v, want file backend with path", cfg.History)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("default server addr = %q, want :8080", cfg.Server.Addr)
	}

	// No regression section: defaults are pass rate plus one rule per metric.
	rules := cfg.RegressionRules()
	want := []evaluation.RegressionRule{
		{Quantity: evaluation.QuantityPassRate, MaxDrop: 0.20},
		{Quantity: evaluation.QuantityDimensionAverage, Dimension: evaluation.DimensionAccuracy, MaxDrop: 0.15},
	}
	if diff := cmp.Diff(want, rules); diff != "" {
		t.Errorf("default RegressionRules() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "no metrics",
			yaml: `policy: hybrid`,
		},
		{
			name: "unknown key",
			yaml: `
metrics:
  - dimension: accuracy
    threshold: 0.8
    weight: 1.0
unknown_section: true
`,
		},
		{
			name: "unknown policy",
			yaml: `
metrics:
  - dimension: accuracy
    threshold: 0.8
    weight: 1.0
policy: strictest
`,
		},
		{
			name: "weights do not sum",
			yaml: `
metrics:
  - dimension: accuracy
    threshold: 0.8
    weight: 0.4
`,
		},
		{
			name: "unknown history backend",
			yaml: `
metrics:
  - dimension: accuracy
    threshold: 0.8
    weight: 1.0
history:
  backend: dynamo
`,
		},
		{
			name: "bad duration",
			yaml: `
metrics:
  - dimension: accuracy
    threshold: 0.8
    weight: 1.0
judge:
  timeout: soon
`,
		},
		{
			name: "regression rule without dimension",
			yaml: `
metrics:
  - dimension: accuracy
    threshold: 0.8
    weight: 1.0
regression:
  - quantity: dimension_average
    max_drop: 0.15
`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse([]byte(tc.yaml)); err == nil {
				t.Errorf("Parse(%s) succeeded, want error", tc.name)
			}
		})
	}
}

func TestOpenHistoryMemory(t *testing.T) {
	t.Parallel()
	cfg, err := Parse([]byte(`
metrics:
  - dimension: accuracy
    threshold: 0.8
    weight: 1.0
history:
  backend: memory
`))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	h, err := cfg.OpenHistory()
	if err != nil {
		t.Fatalf("OpenHistory() failed: %v", err)
	}
	if h == nil {
		t.Fatal("OpenHistory() returned nil history")
	}
}
