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

import (
	"fmt"
	"sort"
)

// DefaultOverallThreshold is the composite pass bar used when none is
// configured.
const DefaultOverallThreshold = 0.75

// Policy selects how per-dimension results compose into a single pass/fail
// decision.
type Policy int

const (
	// PolicyWeighted passes a case when the weighted average of all
	// dimension scores meets the overall threshold. Allows trade-offs
	// between dimensions.
	PolicyWeighted Policy = iota

	// PolicyAllMustPass passes a case only when every dimension individually
	// meets its own threshold. One failure means overall failure.
	PolicyAllMustPass

	// PolicyHybrid requires every critical dimension to pass and the
	// weighted average to meet the overall threshold. Non-critical
	// dimensions may individually fail.
	PolicyHybrid
)

// String returns the string representation of the policy.
func (p Policy) String() string {
	switch p {
	case PolicyWeighted:
		return "weighted"
	case PolicyAllMustPass:
		return "all-must-pass"
	case PolicyHybrid:
		return "hybrid"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy converts a configuration string into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "weighted":
		return PolicyWeighted, nil
	case "all-must-pass":
		return PolicyAllMustPass, nil
	case "hybrid":
		return PolicyHybrid, nil
	default:
		return 0, configErrorf("unknown composite policy %q", s)
	}
}

// CompositeResult is the outcome of composing one case's dimension scores.
type CompositeResult struct {
	// Composite is the single aggregate quality number. Forced to 0.0 when a
	// critical dimension fails.
	Composite float64

	// Passed is the case-level ship/no-ship decision under the active
	// policy.
	Passed bool

	// FailingDimensions lists every dimension whose own score fell below its
	// own threshold or was unavailable, sorted. Always computed regardless
	// of the active policy.
	FailingDimensions []Dimension
}

// CompositeScorer combines per-dimension scores into a composite score and a
// pass/fail decision. The zero value is not usable; construct with
// NewCompositeScorer. A scorer is immutable and safe for concurrent use.
type CompositeScorer struct {
	registry         *Registry
	policy           Policy
	overallThreshold float64
}

// NewCompositeScorer builds a scorer over the given registry.
// overallThreshold must lie in [0, 1]; pass DefaultOverallThreshold for the
// conventional 0.75 bar.
func NewCompositeScorer(registry *Registry, policy Policy, overallThreshold float64) (*CompositeScorer, error) {
	if registry == nil {
		return nil, configErrorf("composite scorer needs a registry")
	}
	if policy != PolicyWeighted && policy != PolicyAllMustPass && policy != PolicyHybrid {
		return nil, configErrorf("unknown composite policy %d", int(policy))
	}
	if overallThreshold < 0 || overallThreshold > 1 {
		return nil, configErrorf("overall threshold %v outside [0, 1]", overallThreshold)
	}
	return &CompositeScorer{
		registry:         registry,
		policy:           policy,
		overallThreshold: overallThreshold,
	}, nil
}

// Policy returns the active composition policy.
func (s *CompositeScorer) Policy() Policy {
	return s.policy
}

// OverallThreshold returns the configured composite pass bar.
func (s *CompositeScorer) OverallThreshold() float64 {
	return s.overallThreshold
}

// Score composes the supplied dimension scores into a CompositeResult.
//
// The score set must cover exactly the registry's dimensions; a divergence
// between the two is a configuration error, not a silent zero contribution.
// Unavailable scores are accepted (they fail their threshold and contribute
// zero weight) since unknown quality is treated as failing, not passing.
//
// Score is a pure function: the same inputs always produce the same result.
func (s *CompositeScorer) Score(scores map[Dimension]DimensionScore) (CompositeResult, error) {
	if len(scores) == 0 {
		return CompositeResult{}, configErrorf("no dimension scores to compose")
	}
	if err := s.checkCoverage(scores); err != nil {
		return CompositeResult{}, err
	}

	var failing []Dimension
	criticalFailed := false
	composite := 0.0

	for _, d := range s.registry.dimensions {
		spec := s.registry.specs[d]
		score := scores[d]

		if score.Unavailable || score.Score < spec.Threshold {
			failing = append(failing, d)
			if spec.Critical {
				criticalFailed = true
			}
		}
		if !score.Unavailable {
			composite += score.Score * spec.Weight
		}
	}
	sort.Slice(failing, func(i, j int) bool { return failing[i] < failing[j] })

	// A critical failure short-circuits: the composite is forced to zero, it
	// does not merely lose that dimension's contribution.
	if criticalFailed {
		return CompositeResult{Composite: 0, Passed: false, FailingDimensions: failing}, nil
	}

	passed := false
	switch s.policy {
	case PolicyAllMustPass:
		passed = len(failing) == 0
	case PolicyWeighted, PolicyHybrid:
		passed = composite >= s.overallThreshold
	}

	return CompositeResult{
		Composite:         composite,
		Passed:            passed,
		FailingDimensions: failing,
	}, nil
}

// checkCoverage verifies that the score set and the registry cover the same
// dimensions.
func (s *CompositeScorer) checkCoverage(scores map[Dimension]DimensionScore) error {
	for _, d := range s.registry.dimensions {
		if _, ok := scores[d]; !ok {
			return configErrorf("dimension %q configured in registry but not scored", d)
		}
	}
	if len(scores) != s.registry.Len() {
		for d := range scores {
			if _, ok := s.registry.specs[d]; !ok {
				return configErrorf("dimension %q scored but not configured in registry", d)
			}
		}
	}
	return nil
}
