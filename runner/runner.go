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

// Package runner orchestrates an evaluation run: it sends every dataset
// case through the chatbot under test, judges each response on every
// registered dimension, scores the results, and appends the run's stats
// to history.
//
// Judge calls are the slow part. They run concurrently per case, bounded
// by one semaphore shared across the whole run so the judge backend sees
// at most Concurrency requests in flight. A failing judge call degrades
// to an unavailable dimension score and never aborts sibling dimensions
// or the run.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/evalgate/evalgate/chatbot"
	"github.com/evalgate/evalgate/dataset"
	"github.com/evalgate/evalgate/evaluation"
	"github.com/evalgate/evalgate/evaluation/llmjudge"
	"github.com/evalgate/evalgate/evaluation/storage"
	"github.com/evalgate/evalgate/telemetry"
)

// DefaultConcurrency bounds in-flight judge calls when Config.Concurrency
// is zero.
const DefaultConcurrency = 4

// Config configures a Runner.
type Config struct {
	// Chatbot is the system under test.
	Chatbot chatbot.Chatbot

	// Judge scores individual dimensions. Wrap with llmjudge.WithRetry to
	// absorb transient judge failures.
	Judge llmjudge.Judge

	// Registry defines the dimensions to judge and their thresholds and
	// weights.
	Registry *evaluation.Registry

	// Policy selects how dimension scores combine into a pass/fail.
	Policy evaluation.Policy

	// OverallThreshold is the composite pass bar for the weighted and
	// hybrid policies. Zero means evaluation.DefaultOverallThreshold.
	OverallThreshold float64

	// Concurrency bounds in-flight judge calls across the whole run.
	// Zero means DefaultConcurrency.
	Concurrency int

	// History receives the finished run's stats. Optional.
	History storage.History
}

// Runner executes evaluation runs. Safe for concurrent use.
type Runner struct {
	cfg    Config
	scorer *evaluation.CompositeScorer
	sem    *semaphore.Weighted
}

// New validates cfg and creates a Runner.
func New(cfg Config) (*Runner, error) {
	if cfg.Chatbot == nil {
		return nil, fmt.Errorf("runner: nil chatbot")
	}
	if cfg.Judge == nil {
		return nil, fmt.Errorf("runner: nil judge")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("runner: nil registry")
	}
	if cfg.OverallThreshold == 0 {
		cfg.OverallThreshold = evaluation.DefaultOverallThreshold
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	scorer, err := evaluation.NewCompositeScorer(cfg.Registry, cfg.Policy, cfg.OverallThreshold)
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:    cfg,
		scorer: scorer,
		sem:    semaphore.NewWeighted(int64(cfg.Concurrency)),
	}, nil
}

// Run evaluates every case and returns the run's stats alongside the
// per-case results. The stats are appended to History when one is
// configured. Run returns an error only on context cancellation, broken
// wiring, or history append failure; chatbot and judge failures degrade
// into SystemFailure results and unavailable scores.
func (r *Runner) Run(ctx context.Context, cases []dataset.Case) (stats evaluation.RunStats, results []evaluation.CaseResult, err error) {
	runID := uuid.NewString()
	ctx, end := telemetry.StartRunSpan(ctx, runID, len(cases))
	defer func() { end(err) }()

	results = make([]evaluation.CaseResult, 0, len(cases))
	for _, c := range cases {
		if ctx.Err() != nil {
			return evaluation.RunStats{}, nil, ctx.Err()
		}
		result, caseErr := r.runCase(ctx, c)
		if caseErr != nil {
			return evaluation.RunStats{}, nil, caseErr
		}
		results = append(results, result)
	}

	stats = evaluation.Aggregate(results)
	stats.RunID = runID
	stats.Timestamp = time.Now().UTC()

	if r.cfg.History != nil {
		if appendErr := r.cfg.History.Append(ctx, stats); appendErr != nil {
			return evaluation.RunStats{}, nil, fmt.Errorf("runner: failed to record run: %w", appendErr)
		}
	}
	return stats, results, nil
}

func (r *Runner) runCase(ctx context.Context, c dataset.Case) (result evaluation.CaseResult, err error) {
	ctx, end := telemetry.StartCaseSpan(ctx, c.ID, c.Category)
	defer func() { end(err) }()

	response, respondErr := r.cfg.Chatbot.Respond(ctx, c.Input, c.Context)
	if respondErr != nil {
		if ctx.Err() != nil {
			return evaluation.CaseResult{}, ctx.Err()
		}
		return r.systemFailure(c, respondErr), nil
	}

	scores, err := r.judgeAll(ctx, c, response)
	if err != nil {
		return evaluation.CaseResult{}, err
	}

	composite, err := r.scorer.Score(scores)
	if err != nil {
		return evaluation.CaseResult{}, fmt.Errorf("runner: scoring case %q: %w", c.ID, err)
	}

	return evaluation.CaseResult{
		CaseID:            c.ID,
		Category:          c.Category,
		Priority:          c.Priority,
		Scores:            scores,
		Composite:         composite.Composite,
		Passed:            composite.Passed,
		FailingDimensions: composite.FailingDimensions,
	}, nil
}

// judgeAll scores every registry dimension concurrently. Judge errors
// degrade to unavailable scores; only context cancellation propagates.
func (r *Runner) judgeAll(ctx context.Context, c dataset.Case, response string) (map[evaluation.Dimension]evaluation.DimensionScore, error) {
	scores := make(map[evaluation.Dimension]evaluation.DimensionScore, r.cfg.Registry.Len())
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, dim := range r.cfg.Registry.Dimensions() {
		spec, _ := r.cfg.Registry.Spec(dim)
		g.Go(func() error {
			if err := r.sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer r.sem.Release(1)

			score, err := r.cfg.Judge.Evaluate(gctx, llmjudge.Request{
				Input:       c.Input,
				Output:      response,
				Context:     c.Context,
				Expected:    c.Expected,
				Dimension:   dim,
				Instruction: spec.Instruction,
			})
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				score = evaluation.Unavailable(dim, err.Error())
			}
			mu.Lock()
			scores[dim] = score
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

// systemFailure builds the result for a case whose chatbot call failed:
// every dimension unavailable, composite zero, counted as a failure.
func (r *Runner) systemFailure(c dataset.Case, cause error) evaluation.CaseResult {
	dims := r.cfg.Registry.Dimensions()
	scores := make(map[evaluation.Dimension]evaluation.DimensionScore, len(dims))
	for _, dim := range dims {
		scores[dim] = evaluation.Unavailable(dim, fmt.Sprintf("system failure: %v", cause))
	}
	return evaluation.CaseResult{
		CaseID:            c.ID,
		Category:          c.Category,
		Priority:          c.Priority,
		Scores:            scores,
		Composite:         0,
		Passed:            false,
		FailingDimensions: dims,
		SystemFailure:     true,
	}
}
