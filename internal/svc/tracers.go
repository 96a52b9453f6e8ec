package svc

import (
	"context"

	sentryotel "github.com/getsentry/sentry-go/otel"
	"github.com/propertyplus/propertyplus/internal/buildconfig"
	"github.com/propertyplus/propertyplus/internal/env"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/multierr"
)

// Tracers holds two tracer providers over the same exporters. Default
// samples according to the configured sampler and is meant for request
// traffic, Always samples everything and is meant for low-volume work like
// cron jobs. Without any enabled exporter both are noops.
type Tracers struct {
	defaultProvider trace.TracerProvider
	alwaysProvider  trace.TracerProvider
	shutdown        []func(ctx context.Context) error
}

func (t *Tracers) Default() trace.TracerProvider {
	return t.defaultProvider
}

func (t *Tracers) Always() trace.TracerProvider {
	return t.alwaysProvider
}

func (t *Tracers) Shutdown(ctx context.Context) error {
	var err error
	for _, shutdown := range t.shutdown {
		err = multierr.Append(err, shutdown(ctx))
	}
	return err
}

func createTracers(ctx context.Context) (*Tracers, error) {
	var processorOpts []sdktrace.TracerProviderOption

	if env.OtelExporterOtlpEnabled() {
		exporter, err := otlptracegrpc.New(ctx)
		if err != nil {
			return nil, err
		}
		processorOpts = append(processorOpts, sdktrace.WithBatcher(exporter))
	}
	if env.OtelExporterSentryEnabled() {
		processorOpts = append(processorOpts, sdktrace.WithSpanProcessor(sentryotel.NewSentrySpanProcessor()))
	}

	if len(processorOpts) == 0 {
		provider := noop.NewTracerProvider()
		return &Tracers{defaultProvider: provider, alwaysProvider: provider}, nil
	}

	res, err := sdkresource.Merge(sdkresource.Default(), sdkresource.NewSchemaless(
		attribute.String("service.name", "propertyplus"),
		attribute.String("service.version", buildconfig.Version()),
	))
	if err != nil {
		return nil, err
	}
	processorOpts = append(processorOpts, sdktrace.WithResource(res))

	defaultProvider := sdktrace.NewTracerProvider(
		append(processorOpts, sdktrace.WithSampler(samplerFromEnv()))...,
	)
	alwaysProvider := sdktrace.NewTracerProvider(
		append(processorOpts, sdktrace.WithSampler(sdktrace.AlwaysSample()))...,
	)

	otel.SetTracerProvider(defaultProvider)
	if env.OtelExporterSentryEnabled() {
		otel.SetTextMapPropagator(sentryotel.NewSentryPropagator())
	} else {
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{}, propagation.Baggage{},
		))
	}

	return &Tracers{
		defaultProvider: defaultProvider,
		alwaysProvider:  alwaysProvider,
		shutdown: []func(ctx context.Context) error{
			defaultProvider.Shutdown,
			alwaysProvider.Shutdown,
		},
	}, nil
}

func samplerFromEnv() sdktrace.Sampler {
	config := env.OtelSampler()
	if config == nil {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	switch config.Sampler {
	case env.SamplerAlwaysOn:
		return sdktrace.AlwaysSample()
	case env.SamplerAlwaysOff:
		return sdktrace.NeverSample()
	case env.SamplerTraceIDRatio:
		return sdktrace.TraceIDRatioBased(config.Arg)
	case env.SamplerParentBasedAlwaysOn:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case env.SamplerParentBasedAlwaysOff:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	case env.SamplerParentBasedTraceIDRatio:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(config.Arg))
	default:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
}
