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

// Aggregate folds one run's case results into RunStats. It is a pure
// function of its input: the ordering of results does not affect any
// aggregate value.
//
// An empty result list yields zero-valued stats rather than an error, since
// an empty run is an expected steady-state condition. The caller stamps
// RunID and Timestamp.
func Aggregate(results []CaseResult) RunStats {
	stats := RunStats{
		CategoryPassRates: make(map[string]float64),
		DimensionAverages: make(map[Dimension]float64),
	}
	if len(results) == 0 {
		return stats
	}

	type catCount struct{ passed, total int }
	categories := make(map[string]*catCount)
	dimSums := make(map[Dimension]float64)
	dimCounts := make(map[Dimension]int)

	for _, res := range results {
		stats.Total++
		if res.Passed {
			stats.Passed++
		}

		if res.Category != "" {
			cc := categories[res.Category]
			if cc == nil {
				cc = &catCount{}
				categories[res.Category] = cc
			}
			cc.total++
			if res.Passed {
				cc.passed++
			}
		}

		if !res.Passed && res.Priority == PriorityHigh {
			stats.HighPriorityFailures = append(stats.HighPriorityFailures, res.CaseID)
		}

		// System failures stay in the pass-rate denominator but must not
		// skew the quality averages.
		if res.SystemFailure {
			continue
		}
		for d, score := range res.Scores {
			if score.Unavailable {
				continue
			}
			dimSums[d] += score.Score
			dimCounts[d]++
		}
	}

	stats.PassRate = float64(stats.Passed) / float64(stats.Total)

	for cat, cc := range categories {
		if cc.total == 0 {
			// Unreachable while categories derive from the supplied results;
			// guarded so a refactor cannot introduce a silent zero rate.
			continue
		}
		stats.CategoryPassRates[cat] = float64(cc.passed) / float64(cc.total)
	}

	for d, sum := range dimSums {
		stats.DimensionAverages[d] = sum / float64(dimCounts[d])
	}

	return stats
}
