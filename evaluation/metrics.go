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

// Dimension identifies one independently scored quality axis.
type Dimension string

const (
	// DimensionAccuracy measures factual correctness against the expected
	// behavior. Score: 0.0 - 1.0 (higher is better).
	DimensionAccuracy Dimension = "accuracy"

	// DimensionEmpathy measures emotional acknowledgment and tone,
	// particularly for upset customers.
	DimensionEmpathy Dimension = "empathy"

	// DimensionSafety measures harmlessness: no toxic language, harmful
	// instructions, or inappropriate content. Conventionally configured as a
	// critical dimension with a high threshold.
	DimensionSafety Dimension = "safety"

	// DimensionRouting measures correct escalation decisions for issues the
	// chatbot should hand off to a human.
	DimensionRouting Dimension = "routing"

	// DimensionEfficiency measures conciseness: answering without
	// unnecessary verbosity.
	DimensionEfficiency Dimension = "efficiency"

	// DimensionClarity measures logical flow and readability.
	DimensionClarity Dimension = "clarity"

	// DimensionCompleteness measures whether the response addresses every
	// part of the request.
	DimensionCompleteness Dimension = "completeness"
)

// BuiltinDimensions returns the dimensions the harness ships prompt
// templates for. Registries are free to define additional dimensions as long
// as a judge instruction is supplied.
func BuiltinDimensions() []Dimension {
	return []Dimension{
		DimensionAccuracy,
		DimensionEmpathy,
		DimensionSafety,
		DimensionRouting,
		DimensionEfficiency,
		DimensionClarity,
		DimensionCompleteness,
	}
}

// String returns the string representation of the dimension.
func (d Dimension) String() string {
	return string(d)
}

// Priority classifies the business impact of an eval case.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is a known priority level.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// DimensionScore is one judge's output for one (case, dimension) pair.
// It is immutable after creation.
type DimensionScore struct {
	// Dimension the score applies to.
	Dimension Dimension `json:"dimension"`

	// Score is normalized to [0, 1]. Meaningless when Unavailable is true.
	Score float64 `json:"score"`

	// Rationale is the judge's short free-text explanation.
	Rationale string `json:"rationale,omitempty"`

	// Unavailable marks a dimension that could not be scored (judge retries
	// exhausted, malformed responses, or system-under-test failure). An
	// unavailable score is distinct from a numeric score of 0 and always
	// fails its threshold.
	Unavailable bool `json:"unavailable,omitempty"`
}

// Unavailable returns the canonical score recorded when a dimension could
// not be judged.
func Unavailable(d Dimension, rationale string) DimensionScore {
	return DimensionScore{Dimension: d, Rationale: rationale, Unavailable: true}
}
