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

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// EndFunc closes a span, recording err as the span status when non-nil.
type EndFunc func(err error)

func tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(scopeName)
}

func start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, EndFunc) {
	ctx, span := tracer().Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
		}
		span.End()
	}
}

// StartRunSpan opens a span covering a whole evaluation run.
func StartRunSpan(ctx context.Context, runID string, cases int) (context.Context, EndFunc) {
	return start(ctx, "evalgate.run",
		attribute.String("evalgate.run_id", runID),
		attribute.Int("evalgate.case_count", cases),
	)
}

// StartCaseSpan opens a span covering one evaluation case.
func StartCaseSpan(ctx context.Context, caseID, category string) (context.Context, EndFunc) {
	return start(ctx, "evalgate.case",
		attribute.String("evalgate.case_id", caseID),
		attribute.String("evalgate.category", category),
	)
}

// StartJudgeSpan opens a span covering one judge model call.
func StartJudgeSpan(ctx context.Context, model, dimension string) (context.Context, EndFunc) {
	return start(ctx, "evalgate.judge",
		attribute.String("gen_ai.request.model", model),
		attribute.String("evalgate.dimension", dimension),
	)
}

// StartChatbotSpan opens a span covering one system-under-test call.
func StartChatbotSpan(ctx context.Context, model string) (context.Context, EndFunc) {
	return start(ctx, "evalgate.chatbot",
		attribute.String("gen_ai.request.model", model),
	)
}
