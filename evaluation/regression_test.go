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
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func runWithPassRate(id string, rate float64) RunStats {
	return RunStats{RunID: id, PassRate: rate}
}

func TestDetectRegressionsPassRate(t *testing.T) {
	t.Parallel()

	history := []RunStats{
		runWithPassRate("r1", 0.90),
		runWithPassRate("r2", 0.88),
		runWithPassRate("r3", 0.60),
		runWithPassRate("r4", 0.95),
	}
	rules := []RegressionRule{{Quantity: QuantityPassRate, MaxDrop: 0.20}}

	got := DetectRegressions(history, rules)

	want := []Regression{{
		RunIndex: 2,
		RunID:    "r3",
		Quantity: QuantityPassRate,
		From:     0.88,
		To:       0.60,
		Drop:     0.28,
	}}
	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b float64) bool {
		return math.Abs(a-b) < 1e-9
	})); diff != "" {
		t.Errorf("DetectRegressions mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectRegressionsAdjacentOnly(t *testing.T) {
	t.Parallel()

	// R1→R2 and R2→R3 are each inside the tolerated drop; R1→R3 would
	// exceed it if compared directly. The detector must stay silent.
	history := []RunStats{
		runWithPassRate("r1", 0.90),
		runWithPassRate("r2", 0.75),
		runWithPassRate("r3", 0.60),
	}
	rules := []RegressionRule{{Quantity: QuantityPassRate, MaxDrop: 0.20}}

	if got := DetectRegressions(history, rules); len(got) != 0 {
		t.Errorf("DetectRegressions = %v, want none: non-adjacent runs must not be compared", got)
	}
}

func TestDetectRegressionsDimensionAverage(t *testing.T) {
	t.Parallel()

	history := []RunStats{
		{RunID: "r1", PassRate: 0.9, DimensionAverages: map[Dimension]float64{DimensionEmpathy: 0.78}},
		{RunID: "r2", PassRate: 0.9, DimensionAverages: map[Dimension]float64{DimensionEmpathy: 0.55}},
	}
	rules := []RegressionRule{
		{Quantity: QuantityPassRate, MaxDrop: 0.20},
		{Quantity: QuantityDimensionAverage, Dimension: DimensionEmpathy, MaxDrop: 0.15},
	}

	got := DetectRegressions(history, rules)

	if len(got) != 1 {
		t.Fatalf("DetectRegressions returned %d regressions, want 1: %v", len(got), got)
	}
	reg := got[0]
	if reg.Quantity != QuantityDimensionAverage || reg.Dimension != DimensionEmpathy {
		t.Errorf("regression = %+v, want empathy dimension-average regression", reg)
	}
	if math.Abs(reg.Drop-0.23) > 1e-9 {
		t.Errorf("Drop = %v, want 0.23", reg.Drop)
	}
}

func TestDetectRegressionsMissingDimensionSkipped(t *testing.T) {
	t.Parallel()

	history := []RunStats{
		{RunID: "r1", DimensionAverages: map[Dimension]float64{DimensionEmpathy: 0.9}},
		{RunID: "r2", DimensionAverages: map[Dimension]float64{}},
	}
	rules := []RegressionRule{
		{Quantity: QuantityDimensionAverage, Dimension: DimensionEmpathy, MaxDrop: 0.15},
	}

	if got := DetectRegressions(history, rules); len(got) != 0 {
		t.Errorf("DetectRegressions = %v, want none when the dimension is missing from a run", got)
	}
}

func TestDetectRegressionsShortHistory(t *testing.T) {
	t.Parallel()

	rules := []RegressionRule{{Quantity: QuantityPassRate, MaxDrop: 0.01}}

	if got := DetectRegressions(nil, rules); got != nil {
		t.Errorf("DetectRegressions(empty) = %v, want nil", got)
	}
	if got := DetectRegressions([]RunStats{runWithPassRate("r1", 0.1)}, rules); got != nil {
		t.Errorf("DetectRegressions(single run) = %v, want nil", got)
	}
}

func TestDetectRegressionsDropAtTolerance(t *testing.T) {
	t.Parallel()

	// A drop exactly equal to MaxDrop is tolerated; only a strictly greater
	// drop regresses.
	history := []RunStats{
		runWithPassRate("r1", 0.75),
		runWithPassRate("r2", 0.50),
	}
	rules := []RegressionRule{{Quantity: QuantityPassRate, MaxDrop: 0.25}}

	if got := DetectRegressions(history, rules); len(got) != 0 {
		t.Errorf("DetectRegressions = %v, want none for a drop exactly at MaxDrop", got)
	}
}
