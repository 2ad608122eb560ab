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

// Package config loads and validates the evalgate YAML configuration.
// Every threshold, weight, policy, budget, and constraint the harness
// uses is data here; code supplies only defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/evalgate/evalgate/evaluation"
	"github.com/evalgate/evalgate/evaluation/sampling"
	"github.com/evalgate/evalgate/evaluation/storage"
)

// Config is the full evalgate configuration surface.
type Config struct {
	// Metrics define the dimension registry. Required.
	Metrics []Metric `yaml:"metrics"`

	// Policy is the composite policy name: weighted, all-must-pass, or
	// hybrid. Default hybrid.
	Policy string `yaml:"policy"`

	// OverallThreshold is the composite pass bar. Default 0.75.
	OverallThreshold float64 `yaml:"overall_threshold"`

	Gate       Gate             `yaml:"gate"`
	Regression []RegressionRule `yaml:"regression"`
	Sampling   Sampling         `yaml:"sampling"`
	Judge      Judge            `yaml:"judge"`
	Chatbot    Chatbot          `yaml:"chatbot"`
	Runner     Runner           `yaml:"runner"`
	History    History          `yaml:"history"`
	Server     Server           `yaml:"server"`
}

// Metric is one dimension's registry entry.
type Metric struct {
	Dimension   string  `yaml:"dimension"`
	Threshold   float64 `yaml:"threshold"`
	Weight      float64 `yaml:"weight"`
	Critical    bool    `yaml:"critical"`
	Instruction string  `yaml:"instruction"`
}

// Gate holds deployment gate constraints.
type Gate struct {
	// MinPassRate is the minimum acceptable run pass rate. Default 0.85.
	MinPassRate float64 `yaml:"min_pass_rate"`

	// MaxHighPriorityFailures is the tolerated count of failed
	// high-priority cases. Default 0.
	MaxHighPriorityFailures int `yaml:"max_high_priority_failures"`
}

// RegressionRule configures one regression check between adjacent runs.
type RegressionRule struct {
	// Quantity is "pass_rate" or "dimension_average".
	Quantity string `yaml:"quantity"`

	// Dimension names the dimension for dimension_average rules.
	Dimension string `yaml:"dimension"`

	// MaxDrop is the tolerated decrease between adjacent runs.
	MaxDrop float64 `yaml:"max_drop"`
}

// Sampling configures the production-request sampler.
type Sampling struct {
	MonthlyBudget            float64     `yaml:"monthly_budget"`
	CostPerEval              float64     `yaml:"cost_per_eval"`
	Policy                   string      `yaml:"policy"`
	Seed                     uint64      `yaml:"seed"`
	HighPriorityCategories   []string    `yaml:"high_priority_categories"`
	MediumPriorityCategories []string    `yaml:"medium_priority_categories"`
	MediumRate               float64     `yaml:"medium_rate"`
	LowRate                  float64     `yaml:"low_rate"`
	DistressKeywords         []string    `yaml:"distress_keywords"`
	LongInputThreshold       int         `yaml:"long_input_threshold"`
	MinUserHistory           int         `yaml:"min_user_history"`
	ResidualRate             float64     `yaml:"residual_rate"`
	FallbackRate             float64     `yaml:"fallback_rate"`
	AdaptiveSteps            []AdaptStep `yaml:"adaptive_steps"`
}

// AdaptStep is one adaptive rate table row.
type AdaptStep struct {
	MinQuality float64 `yaml:"min_quality"`
	Rate       float64 `yaml:"rate"`
}

// Judge configures the judge model client.
type Judge struct {
	// Model is the judge model name. Default gemini-2.5-flash.
	Model string `yaml:"model"`

	// Attempts bounds retries per judge call. Default 3.
	Attempts int `yaml:"attempts"`

	// Backoff is the initial retry backoff, e.g. "1s". Default 1s.
	Backoff Duration `yaml:"backoff"`

	// Timeout bounds one judge call, e.g. "30s". Default 30s.
	Timeout Duration `yaml:"timeout"`
}

// Chatbot configures the system-under-test client.
type Chatbot struct {
	Model        string   `yaml:"model"`
	SystemPrompt string   `yaml:"system_prompt"`
	Timeout      Duration `yaml:"timeout"`
}

// Runner configures run orchestration.
type Runner struct {
	// Concurrency bounds in-flight judge calls. Default 4.
	Concurrency int `yaml:"concurrency"`
}

// History selects the run-history backend.
type History struct {
	// Backend is "memory", "file", or "sqlite". Default file.
	Backend string `yaml:"backend"`

	// Path is the file path (file, sqlite backends).
	Path string `yaml:"path"`
}

// Server configures the dashboard API.
type Server struct {
	// Addr is the listen address. Default ":8080".
	Addr string `yaml:"addr"`
}

// Load reads, decodes, and validates the configuration at path. Unknown
// keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a raw YAML configuration.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: failed to decode: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Policy == "" {
		c.Policy = "hybrid"
	}
	if c.OverallThreshold == 0 {
		c.OverallThreshold = evaluation.DefaultOverallThreshold
	}
	if c.Gate.MinPassRate == 0 {
		c.Gate.MinPassRate = 0.85
	}
	if c.Judge.Model == "" {
		c.Judge.Model = "gemini-2.5-flash"
	}
	if c.Judge.Attempts == 0 {
		c.Judge.Attempts = 3
	}
	if c.Judge.Backoff == 0 {
		c.Judge.Backoff = Duration(time.Second)
	}
	if c.Judge.Timeout == 0 {
		c.Judge.Timeout = Duration(30 * time.Second)
	}
	if c.Chatbot.Model == "" {
		c.Chatbot.Model = "gemini-2.5-flash"
	}
	if c.Chatbot.Timeout == 0 {
		c.Chatbot.Timeout = Duration(30 * time.Second)
	}
	if c.Runner.Concurrency == 0 {
		c.Runner.Concurrency = 4
	}
	if c.History.Backend == "" {
		c.History.Backend = "file"
	}
	if c.History.Path == "" && c.History.Backend != "memory" {
		c.History.Path = "evalgate_history.json"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}

func (c *Config) validate() error {
	if len(c.Metrics) == 0 {
		return fmt.Errorf("config: no metrics configured")
	}
	if _, err := evaluation.ParsePolicy(c.Policy); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Sampling.Policy != "" {
		if _, err := sampling.ParsePolicy(c.Sampling.Policy); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	switch c.History.Backend {
	case "memory", "file", "sqlite":
	default:
		return fmt.Errorf("config: unknown history backend %q", c.History.Backend)
	}
	for _, rule := range c.Regression {
		switch rule.Quantity {
		case "pass_rate":
		case "dimension_average":
			if rule.Dimension == "" {
				return fmt.Errorf("config: dimension_average rule without dimension")
			}
		default:
			return fmt.Errorf("config: unknown regression quantity %q", rule.Quantity)
		}
	}
	// Registry construction performs the weight/threshold validation.
	if _, err := c.Registry(); err != nil {
		return err
	}
	return nil
}

// Registry builds the dimension registry from the metrics section.
func (c *Config) Registry() (*evaluation.Registry, error) {
	specs := make([]evaluation.MetricSpec, 0, len(c.Metrics))
	for _, m := range c.Metrics {
		specs = append(specs, evaluation.MetricSpec{
			Dimension:   evaluation.Dimension(m.Dimension),
			Threshold:   m.Threshold,
			Weight:      m.Weight,
			Critical:    m.Critical,
			Instruction: m.Instruction,
		})
	}
	return evaluation.NewRegistry(specs)
}

// CompositePolicy returns the parsed composite policy.
func (c *Config) CompositePolicy() (evaluation.Policy, error) {
	return evaluation.ParsePolicy(c.Policy)
}

// GateConstraints returns the deployment gate constraints.
func (c *Config) GateConstraints() evaluation.GateConstraints {
	return evaluation.GateConstraints{
		MinPassRate:             c.Gate.MinPassRate,
		MaxHighPriorityFailures: c.Gate.MaxHighPriorityFailures,
	}
}

// RegressionRules returns the configured regression rules. When none are
// configured, the defaults apply: pass rate MaxDrop 0.20 plus a
// dimension-average MaxDrop 0.15 rule per configured metric.
func (c *Config) RegressionRules() []evaluation.RegressionRule {
	if len(c.Regression) == 0 {
		rules := []evaluation.RegressionRule{
			{Quantity: evaluation.QuantityPassRate, MaxDrop: 0.20},
		}
		for _, m := range c.Metrics {
			rules = append(rules, evaluation.RegressionRule{
				Quantity:  evaluation.QuantityDimensionAverage,
				Dimension: evaluation.Dimension(m.Dimension),
				MaxDrop:   0.15,
			})
		}
		return rules
	}
	rules := make([]evaluation.RegressionRule, 0, len(c.Regression))
	for _, r := range c.Regression {
		quantity := evaluation.QuantityPassRate
		if r.Quantity == "dimension_average" {
			quantity = evaluation.QuantityDimensionAverage
		}
		rules = append(rules, evaluation.RegressionRule{
			Quantity:  quantity,
			Dimension: evaluation.Dimension(r.Dimension),
			MaxDrop:   r.MaxDrop,
		})
	}
	return rules
}

// SamplerConfig returns the sampler tunables from the sampling section.
func (c *Config) SamplerConfig() sampling.Config {
	steps := make([]sampling.RateStep, 0, len(c.Sampling.AdaptiveSteps))
	for _, s := range c.Sampling.AdaptiveSteps {
		steps = append(steps, sampling.RateStep{MinQuality: s.MinQuality, Rate: s.Rate})
	}
	return sampling.Config{
		Budget: sampling.Budget{
			MonthlyBudget: c.Sampling.MonthlyBudget,
			CostPerEval:   c.Sampling.CostPerEval,
		},
		HighPriorityCategories:   c.Sampling.HighPriorityCategories,
		MediumPriorityCategories: c.Sampling.MediumPriorityCategories,
		MediumRate:               c.Sampling.MediumRate,
		LowRate:                  c.Sampling.LowRate,
		DistressKeywords:         c.Sampling.DistressKeywords,
		LongInputThreshold:       c.Sampling.LongInputThreshold,
		MinUserHistory:           c.Sampling.MinUserHistory,
		ResidualRate:             c.Sampling.ResidualRate,
		FallbackRate:             c.Sampling.FallbackRate,
		AdaptiveSteps:            steps,
	}
}

// SamplingPolicy returns the parsed sampling policy. Default random.
func (c *Config) SamplingPolicy() (sampling.Policy, error) {
	if c.Sampling.Policy == "" {
		return sampling.PolicyRandom, nil
	}
	return sampling.ParsePolicy(c.Sampling.Policy)
}

// OpenHistory opens the configured run-history backend.
func (c *Config) OpenHistory() (storage.History, error) {
	switch c.History.Backend {
	case "memory":
		return storage.NewMemoryHistory(), nil
	case "file":
		return storage.NewFileHistory(c.History.Path)
	case "sqlite":
		return storage.NewSQLiteHistory(c.History.Path)
	default:
		return nil, fmt.Errorf("config: unknown history backend %q", c.History.Backend)
	}
}
