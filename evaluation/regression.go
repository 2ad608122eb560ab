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

// Quantity names a tracked run-level value a regression rule watches.
type Quantity int

const (
	// QuantityPassRate tracks the run's overall pass rate.
	QuantityPassRate Quantity = iota

	// QuantityDimensionAverage tracks one dimension's average score; the
	// rule's Dimension field selects which.
	QuantityDimensionAverage
)

// String returns the string representation of the quantity.
func (q Quantity) String() string {
	switch q {
	case QuantityPassRate:
		return "pass_rate"
	case QuantityDimensionAverage:
		return "dimension_average"
	default:
		return fmt.Sprintf("quantity(%d)", int(q))
	}
}

// RegressionRule specifies a tracked quantity and the maximum tolerated
// absolute drop between two consecutive runs.
type RegressionRule struct {
	// Quantity to track.
	Quantity Quantity `json:"quantity"`

	// Dimension selects the dimension for QuantityDimensionAverage rules;
	// ignored for QuantityPassRate.
	Dimension Dimension `json:"dimension,omitempty"`

	// MaxDrop is the tolerated absolute drop, e.g. 0.20 for pass rate or
	// 0.15 for a dimension average. A drop strictly greater than MaxDrop is
	// a regression.
	MaxDrop float64 `json:"max_drop"`
}

// Regression records a tracked quantity dropping beyond its tolerated delta
// between two consecutive runs.
type Regression struct {
	// RunIndex is the position of the regressed run in the supplied history.
	RunIndex int `json:"run_index"`

	// RunID identifies the regressed run.
	RunID string `json:"run_id"`

	// Quantity that dropped.
	Quantity Quantity `json:"quantity"`

	// Dimension is set for dimension-average regressions.
	Dimension Dimension `json:"dimension,omitempty"`

	// From and To are the quantity's values in the preceding and regressed
	// run; Drop is From - To.
	From float64 `json:"from"`
	To   float64 `json:"to"`
	Drop float64 `json:"drop"`
}

// DetectRegressions walks the run history in order and flags every rule
// violation between consecutive runs.
//
// Only adjacent runs are compared: a slow drift that never exceeds MaxDrop
// between neighbors is not reported even if the cumulative drop across the
// history would. Root-causing such drifts needs bisection across more than
// two points and is out of scope here.
//
// A history with fewer than two entries yields no regressions. A dimension
// average missing from either run of a pair is skipped for that pair.
func DetectRegressions(history []RunStats, rules []RegressionRule) []Regression {
	if len(history) < 2 {
		return nil
	}

	var regressions []Regression
	for i := 1; i < len(history); i++ {
		prev, curr := history[i-1], history[i]
		for _, rule := range rules {
			from, to, ok := ruleValues(prev, curr, rule)
			if !ok {
				continue
			}
			drop := from - to
			if drop > rule.MaxDrop {
				regressions = append(regressions, Regression{
					RunIndex:  i,
					RunID:     curr.RunID,
					Quantity:  rule.Quantity,
					Dimension: ruleDimension(rule),
					From:      from,
					To:        to,
					Drop:      drop,
				})
			}
		}
	}
	return regressions
}

func ruleValues(prev, curr RunStats, rule RegressionRule) (from, to float64, ok bool) {
	switch rule.Quantity {
	case QuantityPassRate:
		return prev.PassRate, curr.PassRate, true
	case QuantityDimensionAverage:
		from, fromOK := prev.DimensionAverages[rule.Dimension]
		to, toOK := curr.DimensionAverages[rule.Dimension]
		return from, to, fromOK && toOK
	default:
		return 0, 0, false
	}
}

func ruleDimension(rule RegressionRule) Dimension {
	if rule.Quantity == QuantityDimensionAverage {
		return rule.Dimension
	}
	return ""
}
