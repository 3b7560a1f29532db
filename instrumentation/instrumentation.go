// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package instrumentation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const (
	// DefaultServiceName is used when no service name is provided
	DefaultServiceName = "cap-welcome"

	// DefaultServiceVersion is used when no service version is provided
	DefaultServiceVersion = "unknown"

	scopePrefix = "github.com/hashicorp/cap-welcome/"
)

// Config holds instrumentation configuration
type Config struct {
	ServiceName    string
	ServiceVersion string

	// Enabled selects the SDK providers.  When false, no-op providers are used.
	Enabled bool

	// MetricReaders are registered with the SDK meter provider when Enabled.
	// Exporters are wired by the caller through a reader.
	MetricReaders []sdkmetric.Reader

	// SpanProcessors are registered with the SDK tracer provider when Enabled.
	SpanProcessors []sdktrace.SpanProcessor
}

// Instrumentation provides OpenTelemetry instrumentation components
type Instrumentation struct {
	config         Config
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	metrics        *Metrics

	shutdownFuncs []func(context.Context) error
	shutdownOnce  sync.Once
}

// New creates a new Instrumentation
func New(config Config) (*Instrumentation, error) {
	const op = "instrumentation.New"
	if config.ServiceName == "" {
		config.ServiceName = DefaultServiceName
	}
	if config.ServiceVersion == "" {
		config.ServiceVersion = DefaultServiceVersion
	}
	inst := &Instrumentation{config: config}

	switch config.Enabled {
	case true:
		res, err := resource.New(
			context.Background(),
			resource.WithAttributes(
				semconv.ServiceName(config.ServiceName),
				semconv.ServiceVersion(config.ServiceVersion),
			),
		)
		if err != nil {
			return nil, fmt.Errorf("%s: unable to create resource: %w", op, err)
		}
		mOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}
		for _, r := range config.MetricReaders {
			mOpts = append(mOpts, sdkmetric.WithReader(r))
		}
		mp := sdkmetric.NewMeterProvider(mOpts...)

		tOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
		for _, sp := range config.SpanProcessors {
			tOpts = append(tOpts, sdktrace.WithSpanProcessor(sp))
		}
		tp := sdktrace.NewTracerProvider(tOpts...)

		inst.meterProvider, inst.tracerProvider = mp, tp
		inst.shutdownFuncs = append(inst.shutdownFuncs, mp.Shutdown, tp.Shutdown)
	default:
		inst.meterProvider = noop.NewMeterProvider()
		inst.tracerProvider = tracenoop.NewTracerProvider()
	}

	m, err := newMetrics(inst.Meter("http"), inst.Meter("auth"), inst.Meter("greeting"))
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create metrics: %w", op, err)
	}
	inst.metrics = m
	return inst, nil
}

// Noop returns an Instrumentation backed by no-op providers.  It's the
// default for components which aren't given one.
func Noop() *Instrumentation {
	inst, err := New(Config{})
	if err != nil {
		// no-op providers can't fail to create instruments
		panic(err)
	}
	return inst
}

// Shutdown flushes and stops the SDK providers.  It's safe to call more than
// once.
func (i *Instrumentation) Shutdown(ctx context.Context) error {
	var errs []error
	i.shutdownOnce.Do(func() {
		for _, fn := range i.shutdownFuncs {
			if err := fn(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}

// Meter returns a named meter for the given scope (http, auth, greeting)
func (i *Instrumentation) Meter(scope string) metric.Meter {
	return i.meterProvider.Meter(scopePrefix + scope)
}

// Tracer returns a named tracer for the given scope (http, auth, greeting)
func (i *Instrumentation) Tracer(scope string) trace.Tracer {
	return i.tracerProvider.Tracer(scopePrefix + scope)
}

// Metrics returns the metric instruments
func (i *Instrumentation) Metrics() *Metrics { return i.metrics }

// Enabled reports whether SDK providers are in use
func (i *Instrumentation) Enabled() bool { return i.config.Enabled }
