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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evalgate/evalgate/evaluation"
)

// retryJudge decorates a Judge with bounded retries and exponential
// backoff. Both transient failures and malformed responses are retried: a
// judge at temperature zero can still emit garbage once and valid JSON on
// the next attempt.
type retryJudge struct {
	inner    Judge
	attempts int
	backoff  time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps judge so each Evaluate call is attempted up to attempts
// times, doubling backoff between attempts starting from the given base.
// Context cancellation aborts immediately with the context's error.
func WithRetry(judge Judge, attempts int, backoff time.Duration) Judge {
	if attempts < 1 {
		attempts = 1
	}
	if backoff <= 0 {
		backoff = time.Second
	}
	return &retryJudge{
		inner:    judge,
		attempts: attempts,
		backoff:  backoff,
		sleep:    sleepCtx,
	}
}

// Evaluate implements Judge.
func (r *retryJudge) Evaluate(ctx context.Context, req Request) (evaluation.DimensionScore, error) {
	var lastErr error
	delay := r.backoff
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			if err := r.sleep(ctx, delay); err != nil {
				return evaluation.DimensionScore{}, err
			}
			delay *= 2
		}
		score, err := r.inner.Evaluate(ctx, req)
		if err == nil {
			return score, nil
		}
		if !errors.Is(err, ErrUnavailable) && !errors.Is(err, ErrMalformedResponse) {
			return evaluation.DimensionScore{}, err
		}
		if ctx.Err() != nil {
			return evaluation.DimensionScore{}, ctx.Err()
		}
		lastErr = err
	}
	return evaluation.DimensionScore{}, fmt.Errorf("llmjudge: %d attempts exhausted: %w", r.attempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
