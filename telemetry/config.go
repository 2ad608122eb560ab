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
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type config struct {
	// resource allows to customize the OTel resource. It is merged with
	// the defaults.
	resource *resource.Resource

	// spanProcessors allow to register additional span processors, e.g.
	// for custom span exporters.
	spanProcessors []sdktrace.SpanProcessor

	// tracerProvider overrides the default TracerProvider.
	tracerProvider *sdktrace.TracerProvider
}

// Option configures evalgate telemetry.
type Option interface {
	apply(*config) error
}

type optionFunc func(*config) error

func (fn optionFunc) apply(cfg *config) error {
	return fn(cfg)
}

// WithResource configures the OTel resource.
func WithResource(r *resource.Resource) Option {
	return optionFunc(func(cfg *config) error {
		cfg.resource = r
		return nil
	})
}

// WithSpanProcessors registers additional span processors.
func WithSpanProcessors(p ...sdktrace.SpanProcessor) Option {
	return optionFunc(func(cfg *config) error {
		cfg.spanProcessors = append(cfg.spanProcessors, p...)
		return nil
	})
}

// WithTracerProvider overrides the default TracerProvider with a
// preconfigured instance.
func WithTracerProvider(tp *sdktrace.TracerProvider) Option {
	return optionFunc(func(cfg *config) error {
		cfg.tracerProvider = tp
		return nil
	})
}
