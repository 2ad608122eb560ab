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

// Package telemetry contains OpenTelemetry functionality for evalgate:
// tracer setup, spans around evaluation runs and judge calls, and log
// records for judge traffic.
//
// Judge prompt and response content is not recorded by default. Set
// EVALGATE_CAPTURE_MESSAGE_CONTENT=true to include it in log records.
package telemetry

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const scopeName = "github.com/evalgate/evalgate"

// Service wraps the telemetry providers and implements functions for
// telemetry lifecycle management.
type Service interface {
	// SetGlobalOtelProviders registers the configured providers as the
	// global OTel providers.
	SetGlobalOtelProviders()

	// TracerProvider returns the configured TracerProvider or nil.
	TracerProvider() *sdktrace.TracerProvider

	// Shutdown shuts down the underlying OTel providers.
	Shutdown(ctx context.Context) error
}

// New initializes a telemetry service. An OTLP HTTP trace exporter is
// configured when OTEL_EXPORTER_OTLP_ENDPOINT or
// OTEL_EXPORTER_OTLP_TRACES_ENDPOINT is set; otherwise only explicitly
// registered span processors export anything. The caller must call
// Shutdown to flush and release resources.
func New(ctx context.Context, opts ...Option) (Service, error) {
	cfg := &config{}
	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	res, err := resolveResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	processors, err := configureExporters(ctx)
	if err != nil {
		return nil, err
	}
	cfg.spanProcessors = append(cfg.spanProcessors, processors...)

	tp := cfg.tracerProvider
	if tp == nil && len(cfg.spanProcessors) > 0 {
		tpOpts := []sdktrace.TracerProviderOption{
			sdktrace.WithResource(res),
		}
		for _, p := range cfg.spanProcessors {
			tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(p))
		}
		tp = sdktrace.NewTracerProvider(tpOpts...)
	}

	return &service{tracerProvider: tp}, nil
}

type service struct {
	tracerProvider *sdktrace.TracerProvider
}

func (s *service) SetGlobalOtelProviders() {
	if s.tracerProvider != nil {
		otel.SetTracerProvider(s.tracerProvider)
	}
}

func (s *service) TracerProvider() *sdktrace.TracerProvider {
	return s.tracerProvider
}

func (s *service) Shutdown(ctx context.Context) error {
	if s.tracerProvider == nil {
		return nil
	}
	return s.tracerProvider.Shutdown(ctx)
}

// resolveResource merges resource.Default() with the resource from config,
// if present. resource.Default() populates labels from environment
// variables like OTEL_SERVICE_NAME and OTEL_RESOURCE_ATTRIBUTES.
func resolveResource(_ context.Context, cfg *config) (*resource.Resource, error) {
	r := resource.Default()
	if cfg.resource != nil {
		merged, err := resource.Merge(r, cfg.resource)
		if err != nil {
			return nil, fmt.Errorf("failed to merge with config resource: %w", err)
		}
		r = merged
	}
	return r, nil
}

// configureExporters initializes OTel exporters from environment variables.
func configureExporters(ctx context.Context) ([]sdktrace.SpanProcessor, error) {
	var spanProcessors []sdktrace.SpanProcessor

	_, otelEndpointExists := os.LookupEnv("OTEL_EXPORTER_OTLP_ENDPOINT")
	_, otelTracesEndpointExists := os.LookupEnv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT")
	if otelEndpointExists || otelTracesEndpointExists {
		exporter, err := otlptracehttp.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
		}
		spanProcessors = append(spanProcessors, sdktrace.NewBatchSpanProcessor(exporter))
	}
	return spanProcessors, nil
}
