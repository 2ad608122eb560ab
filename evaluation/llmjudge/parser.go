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

package llmjudge

import (
	"encoding/json"
	"fmt"
	"strings"
)

// judgeScale is the 0..judgeScale integer scale the judge prompt asks for.
// Parsed scores are normalized to [0, 1].
const judgeScale = 10

type verdict struct {
	Score  *float64 `json:"score"`
	Reason string   `json:"reason"`
}

// parseVerdict extracts a normalized score and rationale from the judge's
// raw response text. Judge models habitually wrap JSON in markdown fences
// even when told not to, so fences are stripped before decoding.
func parseVerdict(text string) (float64, string, error) {
	cleaned := stripFences(text)
	var v verdict
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		return 0, "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if v.Score == nil {
		return 0, "", fmt.Errorf("%w: missing score field", ErrMalformedResponse)
	}
	raw := *v.Score
	if raw < 0 || raw > judgeScale {
		return 0, "", fmt.Errorf("%w: score %v out of 0-%d range", ErrMalformedResponse, raw, judgeScale)
	}
	return raw / judgeScale, v.Reason, nil
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag, and trims whitespace.
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop a language tag such as "json" on the opening fence line.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		first := strings.TrimSpace(s[:i])
		if first == "" || !strings.ContainsAny(first, "{}") {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
