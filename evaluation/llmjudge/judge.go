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

// Package llmjudge implements the LLM-as-Judge port: scoring one quality
// dimension of one chatbot response by prompting a judge model and parsing
// its JSON verdict.
//
// The judge is an external, slow, rate-limited collaborator and may be
// noisy between calls on the same input. Callers are expected to wrap a
// judge with WithRetry and to translate exhausted failures into unavailable
// dimension scores rather than propagating errors into composite scoring.
package llmjudge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/evalgate/evalgate/evaluation"
	"github.com/evalgate/evalgate/telemetry"
)

var (
	// ErrUnavailable indicates a transient judge failure (timeout,
	// transport error, empty response). Retryable.
	ErrUnavailable = errors.New("llmjudge: judge unavailable")

	// ErrMalformedResponse indicates the judge responded but its output
	// could not be parsed to a score. Handled like ErrUnavailable by
	// callers; distinguished only in diagnostics.
	ErrMalformedResponse = errors.New("llmjudge: malformed judge response")
)

// Request carries everything the judge needs to score one dimension of one
// case.
type Request struct {
	// Input is the user's message to the system under test.
	Input string

	// Output is the system under test's response being judged.
	Output string

	// Context is optional retrieval or conversation context supplied to the
	// judge verbatim.
	Context []string

	// Expected describes the expected behavior, when the dimension's prompt
	// uses a reference.
	Expected string

	// Dimension is the quality axis to score.
	Dimension evaluation.Dimension

	// Instruction is extra criteria text from the metric spec, appended to
	// the dimension's prompt.
	Instruction string
}

// Judge scores one dimension of one response.
//
// Evaluate returns the dimension's score in [0, 1] with a short rationale,
// or ErrUnavailable / ErrMalformedResponse. It never returns a score
// alongside an error.
type Judge interface {
	Evaluate(ctx context.Context, req Request) (evaluation.DimensionScore, error)
}

// The Func adapter allows plain functions to serve as judges, mainly in
// tests.
type Func func(ctx context.Context, req Request) (evaluation.DimensionScore, error)

// Evaluate implements Judge.
func (f Func) Evaluate(ctx context.Context, req Request) (evaluation.DimensionScore, error) {
	return f(ctx, req)
}

// Config configures a GenAIJudge.
type Config struct {
	// Client is the genai client used to reach the judge model.
	Client *genai.Client

	// Model is the judge model name, e.g. "gemini-2.5-flash".
	Model string

	// Timeout bounds a single judge call. Zero means 30s.
	Timeout time.Duration
}

// GenAIJudge scores dimensions by prompting a genai model at temperature
// zero and parsing the JSON verdict it returns.
type GenAIJudge struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	config  *genai.GenerateContentConfig
}

// NewGenAIJudge creates a judge backed by the given genai client.
func NewGenAIJudge(cfg Config) (*GenAIJudge, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("llmjudge: nil genai client")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("llmjudge: empty judge model name")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &GenAIJudge{
		client:  cfg.Client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		// Temperature 0 keeps repeated judgments as stable as the model
		// allows.
		config: &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0)},
	}, nil
}

// Evaluate implements Judge.
func (j *GenAIJudge) Evaluate(ctx context.Context, req Request) (score evaluation.DimensionScore, err error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	ctx, end := telemetry.StartJudgeSpan(ctx, j.model, string(req.Dimension))
	defer func() { end(err) }()

	prompt := BuildPrompt(req)
	telemetry.LogJudgeRequest(ctx, j.model, string(req.Dimension), prompt)

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	resp, genErr := j.client.Models.GenerateContent(ctx, j.model, contents, j.config)
	if genErr != nil {
		return evaluation.DimensionScore{}, fmt.Errorf("%w: %v", ErrUnavailable, genErr)
	}

	text := resp.Text()
	telemetry.LogJudgeResponse(ctx, j.model, string(req.Dimension), text)
	if text == "" {
		return evaluation.DimensionScore{}, fmt.Errorf("%w: empty response", ErrUnavailable)
	}

	value, rationale, parseErr := parseVerdict(text)
	if parseErr != nil {
		return evaluation.DimensionScore{}, parseErr
	}

	return evaluation.DimensionScore{
		Dimension: req.Dimension,
		Score:     value,
		Rationale: rationale,
	}, nil
}
