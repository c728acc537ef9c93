// Package otel wires OpenTelemetry tracing, metrics and logs for the console binaries,
// exporting over OTLP/gRPC when a collector endpoint is configured.
package otel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
)

// metricInterval is how often metrics are pushed. Short because console commands are short-lived.
const metricInterval = 10 * time.Second

// Providers holds the OpenTelemetry providers and a shutdown function.
type Providers struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *metric.MeterProvider
	LoggerProvider *sdklog.LoggerProvider
	Shutdown       func(context.Context) error
}

// collectorTarget turns an endpoint URL (or bare host:port) into the gRPC dial target and
// decides whether to skip TLS. Paths are dropped; https uses TLS unless insecureOverride is set.
func collectorTarget(endpoint string, insecureOverride bool) (string, bool, error) {
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("invalid OTLP endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("invalid OTLP endpoint %q: missing host", endpoint)
	}
	return u.Host, insecureOverride || u.Scheme != "https", nil
}

// NewProviders creates tracer, meter and logger providers exporting to endpoint.
// An empty endpoint yields in-process providers with nothing attached and a no-op Shutdown.
func NewProviders(ctx context.Context, endpoint, serviceName string, insecureOverride bool) (*Providers, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return &Providers{
			TracerProvider: sdktrace.NewTracerProvider(),
			MeterProvider:  metric.NewMeterProvider(),
			LoggerProvider: sdklog.NewLoggerProvider(),
			Shutdown:       func(context.Context) error { return nil },
		}, nil
	}

	target, insecure, err := collectorTarget(endpoint, insecureOverride)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceNameKey.String(serviceName)),
	)
	if err != nil {
		return nil, err
	}

	var shutdownFns []func(context.Context) error
	fail := func(err error) (*Providers, error) {
		for i := len(shutdownFns) - 1; i >= 0; i-- {
			_ = shutdownFns[i](ctx)
		}
		return nil, err
	}

	traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(target)}
	metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(target)}
	logOpts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(target)}
	if insecure {
		traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
		metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
		logOpts = append(logOpts, otlploggrpc.WithInsecure())
	}

	traceExp, err := otlptracegrpc.New(ctx, traceOpts...)
	if err != nil {
		return fail(err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExp), sdktrace.WithResource(res))
	shutdownFns = append(shutdownFns, tp.Shutdown)

	metricExp, err := otlpmetricgrpc.New(ctx, metricOpts...)
	if err != nil {
		return fail(err)
	}
	mp := metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(metricExp, metric.WithInterval(metricInterval))),
	)
	shutdownFns = append(shutdownFns, mp.Shutdown)

	logExp, err := otlploggrpc.New(ctx, logOpts...)
	if err != nil {
		return fail(err)
	}
	lp := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExp)),
		sdklog.WithResource(res),
	)
	shutdownFns = append(shutdownFns, lp.Shutdown)

	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdownFns) - 1; i >= 0; i-- {
			if err := shutdownFns[i](ctx); err != nil {
				slog.Warn("telemetry: shutdown", "error", err)
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	return &Providers{
		TracerProvider: tp,
		MeterProvider:  mp,
		LoggerProvider: lp,
		Shutdown:       shutdown,
	}, nil
}

// SetGlobal installs the providers as the otel globals used by the API client's spans and counters
// and by any library logging through the global LoggerProvider. Nil providers are skipped.
func (p *Providers) SetGlobal() {
	if p == nil {
		return
	}
	if p.TracerProvider != nil {
		otel.SetTracerProvider(p.TracerProvider)
	}
	if p.MeterProvider != nil {
		otel.SetMeterProvider(p.MeterProvider)
	}
	if p.LoggerProvider != nil {
		global.SetLoggerProvider(p.LoggerProvider)
	}
}
