package otel

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log/global"

	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.38.0"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
)

type ShutdownFunc func(ctx context.Context) error

// Setup installs the default slog logger and, when TELEMETRY is set, OTLP
// exporters for logs, traces and metrics. The returned function flushes them.
func Setup(ctx context.Context, service string) (ShutdownFunc, error) {
	level := slog.LevelInfo

	if EnableDebug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	if !EnableTelemetry {
		return func(context.Context) error { return nil }, nil
	}

	resource, err := sdkresource.Merge(
		sdkresource.Default(),
		sdkresource.NewSchemaless(semconv.ServiceName(service)),
	)

	if err != nil {
		return nil, err
	}

	var shutdowns []ShutdownFunc

	shutdown := func(ctx context.Context) error {
		var result error

		for _, fn := range shutdowns {
			result = errors.Join(result, fn(ctx))
		}

		return result
	}

	tracer, err := setupTracer(ctx, resource)

	if err != nil {
		return nil, err
	}

	shutdowns = append(shutdowns, tracer)

	meter, err := setupMeter(ctx, resource)

	if err != nil {
		return nil, errors.Join(err, shutdown(ctx))
	}

	shutdowns = append(shutdowns, meter)

	logger, err := setupLogger(ctx, resource)

	if err != nil {
		return nil, errors.Join(err, shutdown(ctx))
	}

	shutdowns = append(shutdowns, logger)

	return shutdown, nil
}

func useGRPC(signal string) bool {
	return strings.ToLower(os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL")) == "grpc" || strings.ToLower(os.Getenv("OTEL_EXPORTER_OTLP_"+signal+"_PROTOCOL")) == "grpc"
}

func setupLogger(ctx context.Context, resource *sdkresource.Resource) (ShutdownFunc, error) {
	var err error
	var exporter sdklog.Exporter

	if useGRPC("LOGS") {
		exporter, err = otlploggrpc.New(ctx)
	} else {
		exporter, err = otlploghttp.New(ctx)
	}

	if err != nil {
		return nil, err
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(resource),
	)

	global.SetLoggerProvider(provider)

	logger := otelslog.NewLogger(instrumentationName, otelslog.WithLoggerProvider(provider))
	slog.SetDefault(logger)

	return provider.Shutdown, nil
}

func setupTracer(ctx context.Context, resource *sdkresource.Resource) (ShutdownFunc, error) {
	var err error
	var exporter sdktrace.SpanExporter

	if useGRPC("TRACES") {
		exporter, err = otlptracegrpc.New(ctx)
	} else {
		exporter, err = otlptracehttp.New(ctx)
	}

	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(time.Second)),
		sdktrace.WithResource(resource),
	)

	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}

func setupMeter(ctx context.Context, resource *sdkresource.Resource) (ShutdownFunc, error) {
	var err error
	var exporter sdkmetric.Exporter

	if useGRPC("METRICS") {
		exporter, err = otlpmetricgrpc.New(ctx)
	} else {
		exporter, err = otlpmetrichttp.New(ctx)
	}

	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(3*time.Second))),
		sdkmetric.WithResource(resource),
	)

	otel.SetMeterProvider(provider)

	return provider.Shutdown, nil
}
