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

// Package sampling selects a bounded-size subset of production requests for
// evaluation under a cost budget.
//
// Evaluating every production request is too expensive, so the sampler
// applies one of four interchangeable policies: unbiased random draws under
// the daily budget, priority-weighted category sampling, failure-biased
// selection of requests likely to expose problems, and quality-adaptive
// rates that scale evaluation coverage to incident severity.
//
// Every candidate receives a Decision with a rationale, selected or not, so
// a sampling run is fully auditable. Randomness comes from a seedable PRNG:
// the same seed over the same candidates always yields the same selection
// set, which keeps sampling reproducible in tests.
package sampling

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
)

// Policy selects the sampling strategy. Policies are tags, not types: the
// sampler dispatches on the value explicitly.
type Policy int

const (
	// PolicyRandom draws each candidate independently at the rate the daily
	// budget allows. Unbiased view of overall quality.
	PolicyRandom Policy = iota

	// PolicyPriority always selects configured high-priority categories,
	// samples medium-priority ones at a configured rate, and the rest at a
	// low residual rate.
	PolicyPriority

	// PolicyFailureBiased selects requests matching failure-signal
	// heuristics (distress keywords, unusually long inputs, low-history
	// users) plus a small residual draw for baseline coverage.
	PolicyFailureBiased

	// PolicyAdaptive sets the selection rate from the recent quality signal
	// via a configurable ordered rate table: the worse recent quality, the
	// more traffic gets evaluated.
	PolicyAdaptive
)

// String returns the string representation of the policy.
func (p Policy) String() string {
	switch p {
	case PolicyRandom:
		return "random"
	case PolicyPriority:
		return "priority"
	case PolicyFailureBiased:
		return "failure-biased"
	case PolicyAdaptive:
		return "adaptive"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy converts a configuration string into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "random":
		return PolicyRandom, nil
	case "priority":
		return PolicyPriority, nil
	case "failure-biased":
		return PolicyFailureBiased, nil
	case "adaptive":
		return PolicyAdaptive, nil
	default:
		return 0, fmt.Errorf("sampling: unknown policy %q", s)
	}
}

// Request describes one candidate production request.
type Request struct {
	// ID identifies the request in the sampling report.
	ID string `json:"id"`

	// Category tags the request, e.g. "billing" or "escalation".
	Category string `json:"category,omitempty"`

	// Text is the raw user input.
	Text string `json:"text"`

	// UserHistoryCount is the number of prior interactions the requesting
	// user has had. Low-history users are a failure signal.
	UserHistoryCount int `json:"user_history_count,omitempty"`
}

// Decision records whether one candidate was selected for evaluation and
// why. Ephemeral: produced per request and not persisted beyond the
// sampling report.
type Decision struct {
	RequestID string `json:"request_id"`
	Selected  bool   `json:"selected"`
	Policy    Policy `json:"-"`
	Rationale string `json:"rationale"`
}

// Budget bounds evaluation spend.
type Budget struct {
	// MonthlyBudget is the evaluation spend ceiling in dollars.
	MonthlyBudget float64 `json:"monthly_budget"`

	// CostPerEval is the cost of one full evaluation in dollars.
	CostPerEval float64 `json:"cost_per_eval"`
}

// DailyBudget returns the per-day share of the monthly budget.
func (b Budget) DailyBudget() float64 {
	return b.MonthlyBudget / 30
}

// DailyEvalLimit returns how many evaluations the daily budget affords.
func (b Budget) DailyEvalLimit() int {
	if b.CostPerEval <= 0 {
		return 0
	}
	return int(math.Floor(b.DailyBudget() / b.CostPerEval))
}

// RateStep is one row of the adaptive rate table: when the recent quality
// signal is at least MinQuality, sample at Rate.
type RateStep struct {
	MinQuality float64 `json:"min_quality"`
	Rate       float64 `json:"rate"`
}

// DefaultAdaptiveSteps is the conventional adaptive table: excellent quality
// gets spot checks, degraded quality triggers heavy sampling.
func DefaultAdaptiveSteps() []RateStep {
	return []RateStep{
		{MinQuality: 0.95, Rate: 0.05},
		{MinQuality: 0.85, Rate: 0.10},
		{MinQuality: 0.75, Rate: 0.25},
	}
}

// Config carries the sampler's tunables. Zero values fall back to the
// conventional defaults documented per field.
type Config struct {
	// Budget bounds the random policy's selection rate.
	Budget Budget

	// HighPriorityCategories are always selected under PolicyPriority.
	HighPriorityCategories []string

	// MediumPriorityCategories are selected at MediumRate.
	MediumPriorityCategories []string

	// MediumRate is the selection probability for medium-priority
	// categories. Default 0.5.
	MediumRate float64

	// LowRate is the selection probability for unprioritized categories.
	// Default 0.1.
	LowRate float64

	// DistressKeywords flag likely-failure requests under
	// PolicyFailureBiased.
	DistressKeywords []string

	// LongInputThreshold is the character count above which an input counts
	// as complex. Default 100.
	LongInputThreshold int

	// MinUserHistory is the interaction-count floor below which a user
	// counts as new. Default 3.
	MinUserHistory int

	// ResidualRate is the baseline-coverage probability for candidates
	// matching no failure signal. Default 0.1.
	ResidualRate float64

	// AdaptiveSteps is the ordered (MinQuality, Rate) table for
	// PolicyAdaptive, highest MinQuality first. Default
	// DefaultAdaptiveSteps.
	AdaptiveSteps []RateStep

	// FallbackRate applies under PolicyAdaptive when recent quality is
	// below every step, or unknown. Default 0.5.
	FallbackRate float64
}

func (c Config) withDefaults() Config {
	if c.MediumRate == 0 {
		c.MediumRate = 0.5
	}
	if c.LowRate == 0 {
		c.LowRate = 0.1
	}
	if c.LongInputThreshold == 0 {
		c.LongInputThreshold = 100
	}
	if c.MinUserHistory == 0 {
		c.MinUserHistory = 3
	}
	if c.ResidualRate == 0 {
		c.ResidualRate = 0.1
	}
	if len(c.AdaptiveSteps) == 0 {
		c.AdaptiveSteps = DefaultAdaptiveSteps()
	}
	if c.FallbackRate == 0 {
		c.FallbackRate = 0.5
	}
	if len(c.DistressKeywords) == 0 {
		c.DistressKeywords = []string{"ridiculous", "terrible", "sue", "complaint"}
	}
	return c
}

// Sampler draws bounded evaluation samples from candidate requests.
// Not safe for concurrent use: the PRNG state advances per draw.
type Sampler struct {
	cfg    Config
	rng    *rand.Rand
	high   map[string]bool
	medium map[string]bool
}

// New builds a sampler with the given config and PRNG seed. Production use
// should pass a fresh seed; tests pass a fixed one for reproducible
// selection sets.
func New(cfg Config, seed uint64) *Sampler {
	cfg = cfg.withDefaults()
	s := &Sampler{
		cfg:    cfg,
		rng:    rand.New(rand.NewPCG(seed, seed)),
		high:   make(map[string]bool, len(cfg.HighPriorityCategories)),
		medium: make(map[string]bool, len(cfg.MediumPriorityCategories)),
	}
	for _, c := range cfg.HighPriorityCategories {
		s.high[c] = true
	}
	for _, c := range cfg.MediumPriorityCategories {
		s.medium[c] = true
	}
	return s
}

// Sample decides, for every candidate, whether it is selected for
// evaluation under the given policy.
//
// recentQuality is the latest known pass rate in [0, 1]; it is only
// consulted by PolicyAdaptive and may be nil when no quality signal exists
// yet, in which case the fallback rate applies. An empty candidate list
// yields an empty decision list.
func (s *Sampler) Sample(candidates []Request, policy Policy, recentQuality *float64) []Decision {
	decisions := make([]Decision, 0, len(candidates))
	if len(candidates) == 0 {
		return decisions
	}

	switch policy {
	case PolicyRandom:
		rate := s.randomRate(len(candidates))
		for _, req := range candidates {
			decisions = append(decisions, s.bernoulli(req, policy, rate,
				fmt.Sprintf("random draw under budget rate %.3f", rate)))
		}
	case PolicyPriority:
		for _, req := range candidates {
			decisions = append(decisions, s.samplePriority(req))
		}
	case PolicyFailureBiased:
		for _, req := range candidates {
			decisions = append(decisions, s.sampleFailureBiased(req))
		}
	case PolicyAdaptive:
		rate, why := s.adaptiveRate(recentQuality)
		for _, req := range candidates {
			decisions = append(decisions, s.bernoulli(req, policy, rate, why))
		}
	default:
		for _, req := range candidates {
			decisions = append(decisions, Decision{
				RequestID: req.ID,
				Policy:    policy,
				Rationale: fmt.Sprintf("unknown policy %d", int(policy)),
			})
		}
	}
	return decisions
}

// randomRate converts the daily eval limit into a per-candidate probability.
func (s *Sampler) randomRate(candidates int) float64 {
	limit := s.cfg.Budget.DailyEvalLimit()
	return math.Min(1.0, float64(limit)/float64(candidates))
}

func (s *Sampler) bernoulli(req Request, policy Policy, rate float64, why string) Decision {
	return Decision{
		RequestID: req.ID,
		Selected:  s.rng.Float64() < rate,
		Policy:    policy,
		Rationale: why,
	}
}

func (s *Sampler) samplePriority(req Request) Decision {
	switch {
	case s.high[req.Category]:
		return Decision{
			RequestID: req.ID,
			Selected:  true,
			Policy:    PolicyPriority,
			Rationale: fmt.Sprintf("high-priority category %q", req.Category),
		}
	case s.medium[req.Category]:
		return s.bernoulli(req, PolicyPriority, s.cfg.MediumRate,
			fmt.Sprintf("medium-priority category %q at rate %.2f", req.Category, s.cfg.MediumRate))
	default:
		return s.bernoulli(req, PolicyPriority, s.cfg.LowRate,
			fmt.Sprintf("low-priority category %q at rate %.2f", req.Category, s.cfg.LowRate))
	}
}

func (s *Sampler) sampleFailureBiased(req Request) Decision {
	if kw, ok := s.matchDistress(req.Text); ok {
		return Decision{
			RequestID: req.ID,
			Selected:  true,
			Policy:    PolicyFailureBiased,
			Rationale: fmt.Sprintf("matched distress keyword %q", kw),
		}
	}
	if len(req.Text) > s.cfg.LongInputThreshold {
		return Decision{
			RequestID: req.ID,
			Selected:  true,
			Policy:    PolicyFailureBiased,
			Rationale: fmt.Sprintf("long input (%d chars > %d)", len(req.Text), s.cfg.LongInputThreshold),
		}
	}
	if req.UserHistoryCount < s.cfg.MinUserHistory {
		return Decision{
			RequestID: req.ID,
			Selected:  true,
			Policy:    PolicyFailureBiased,
			Rationale: fmt.Sprintf("low-history user (%d interactions < %d)", req.UserHistoryCount, s.cfg.MinUserHistory),
		}
	}
	return s.bernoulli(req, PolicyFailureBiased, s.cfg.ResidualRate,
		fmt.Sprintf("no failure signal, residual draw at rate %.2f", s.cfg.ResidualRate))
}

func (s *Sampler) matchDistress(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, kw := range s.cfg.DistressKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return kw, true
		}
	}
	return "", false
}

// adaptiveRate picks the first step whose MinQuality the signal meets.
func (s *Sampler) adaptiveRate(recentQuality *float64) (float64, string) {
	if recentQuality == nil {
		return s.cfg.FallbackRate, fmt.Sprintf("no quality signal, fallback rate %.2f", s.cfg.FallbackRate)
	}
	q := *recentQuality
	for _, step := range s.cfg.AdaptiveSteps {
		if q >= step.MinQuality {
			return step.Rate, fmt.Sprintf("adaptive rate %.2f for recent quality %.2f", step.Rate, q)
		}
	}
	return s.cfg.FallbackRate, fmt.Sprintf("recent quality %.2f below every step, fallback rate %.2f", q, s.cfg.FallbackRate)
}

// Selected filters a decision list down to the selected request IDs,
// preserving order.
func Selected(decisions []Decision) []string {
	var ids []string
	for _, d := range decisions {
		if d.Selected {
			ids = append(ids, d.RequestID)
		}
	}
	return ids
}
