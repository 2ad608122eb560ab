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
	"math"
	"sort"
)

// weightSumTolerance is the accepted deviation of the registry weight sum
// from 1.0.
const weightSumTolerance = 0.01

// ConfigError reports malformed evaluation configuration: a bad registry, a
// score set that diverges from the registry, or invalid scorer settings.
// Configuration errors are raised at setup, never silently corrected.
type ConfigError struct {
	msg string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "evaluation: " + e.msg
}

func configErrorf(format string, args ...any) error {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// MetricSpec is the configuration for one dimension.
type MetricSpec struct {
	// Dimension this spec configures.
	Dimension Dimension `json:"dimension"`

	// Threshold is the per-dimension pass bar in [0, 1]. A score below the
	// threshold individually fails the dimension.
	Threshold float64 `json:"threshold"`

	// Weight is the dimension's share of the composite score in [0, 1].
	// Weights across the registry must sum to 1.0 within tolerance.
	Weight float64 `json:"weight"`

	// Critical marks a dimension whose failure alone forces overall failure
	// regardless of weighting, e.g. safety.
	Critical bool `json:"critical,omitempty"`

	// Instruction is extra criteria text passed to the judge for this
	// dimension. Optional for built-in dimensions, which carry default
	// prompts.
	Instruction string `json:"instruction,omitempty"`
}

// Registry maps dimensions to their metric specs. It is validated at
// construction and immutable afterwards, so it may be shared freely across
// goroutines.
type Registry struct {
	specs      map[Dimension]MetricSpec
	dimensions []Dimension
}

// NewRegistry validates the given specs and builds a registry.
//
// Construction fails with a *ConfigError when the spec list is empty, a
// dimension appears twice, a threshold or weight is outside [0, 1], or the
// weights do not sum to 1.0 within a tolerance of 0.01.
func NewRegistry(specs []MetricSpec) (*Registry, error) {
	if len(specs) == 0 {
		return nil, configErrorf("registry needs at least one metric spec")
	}

	byDim := make(map[Dimension]MetricSpec, len(specs))
	weightSum := 0.0
	for _, spec := range specs {
		if spec.Dimension == "" {
			return nil, configErrorf("metric spec with empty dimension name")
		}
		if _, dup := byDim[spec.Dimension]; dup {
			return nil, configErrorf("duplicate dimension %q in registry", spec.Dimension)
		}
		if spec.Threshold < 0 || spec.Threshold > 1 {
			return nil, configErrorf("dimension %q: threshold %v outside [0, 1]", spec.Dimension, spec.Threshold)
		}
		if spec.Weight < 0 || spec.Weight > 1 {
			return nil, configErrorf("dimension %q: weight %v outside [0, 1]", spec.Dimension, spec.Weight)
		}
		byDim[spec.Dimension] = spec
		weightSum += spec.Weight
	}

	if math.Abs(weightSum-1.0) > weightSumTolerance {
		return nil, configErrorf("registry weights must sum to 1.0 (±%v), got %v", weightSumTolerance, weightSum)
	}

	dims := make([]Dimension, 0, len(byDim))
	for d := range byDim {
		dims = append(dims, d)
	}
	sort.Slice(dims, func(i, j int) bool { return dims[i] < dims[j] })

	return &Registry{specs: byDim, dimensions: dims}, nil
}

// Spec returns the metric spec for the given dimension.
func (r *Registry) Spec(d Dimension) (MetricSpec, bool) {
	spec, ok := r.specs[d]
	return spec, ok
}

// Dimensions returns all configured dimensions in sorted order.
func (r *Registry) Dimensions() []Dimension {
	out := make([]Dimension, len(r.dimensions))
	copy(out, r.dimensions)
	return out
}

// CriticalDimensions returns the configured critical dimensions in sorted
// order.
func (r *Registry) CriticalDimensions() []Dimension {
	var out []Dimension
	for _, d := range r.dimensions {
		if r.specs[d].Critical {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the number of configured dimensions.
func (r *Registry) Len() int {
	return len(r.specs)
}
