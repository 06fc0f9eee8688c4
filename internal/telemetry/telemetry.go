package telemetry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"alfredoptarigan/ai-interviewer/internal/config"
)

const (
	serviceName    = "ai-interviewer"
	serviceVersion = "1.0.0"
)

// Telemetry bundles the tracer and meter handed to instrumented components.
type Telemetry struct {
	Tracer trace.Tracer
	Meter  metric.Meter
}

// Noop returns a Telemetry whose spans and instruments record nothing.
func Noop() Telemetry {
	return Telemetry{
		Tracer: tracenoop.NewTracerProvider().Tracer(serviceName),
		Meter:  metricnoop.NewMeterProvider().Meter(serviceName),
	}
}

// Init sets up tracing and metrics. Traces and metrics are written as pretty
// printed JSON to rotated files under cfg.Dir; metrics are flushed every 10s.
// When telemetry is disabled the noop providers are returned.
func Init(ctx context.Context, cfg config.TelemetryConfig, log *zap.Logger) (Telemetry, func(), error) {
	if !cfg.Enabled {
		return Noop(), func() {}, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return Telemetry{}, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	dir := cfg.Dir
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Telemetry{}, nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}

	traceFile := rotatedFile(filepath.Join(dir, "interviewer_traces.log"))
	traceExporter, err := stdouttrace.New(
		stdouttrace.WithWriter(traceFile),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return Telemetry{}, nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	metricsFile := rotatedFile(filepath.Join(dir, "interviewer_metrics.log"))
	metricExporter, err := stdoutmetric.New(
		stdoutmetric.WithWriter(metricsFile),
		stdoutmetric.WithPrettyPrint(),
	)
	if err != nil {
		return Telemetry{}, nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(10*time.Second)),
		),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Error("failed to shutdown tracer provider", zap.Error(err))
		}
		if err := mp.Shutdown(ctx); err != nil {
			log.Error("failed to shutdown meter provider", zap.Error(err))
		}
		if err := traceFile.Close(); err != nil {
			log.Error("failed to close trace file", zap.Error(err))
		}
		if err := metricsFile.Close(); err != nil {
			log.Error("failed to close metrics file", zap.Error(err))
		}
	}

	log.Info("telemetry enabled", zap.String("dir", dir))

	return Telemetry{Tracer: tp.Tracer(serviceName), Meter: mp.Meter(serviceName)}, cleanup, nil
}

func rotatedFile(name string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   name,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
}
