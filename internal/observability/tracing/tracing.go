package tracing

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ServiceName identifies the API in exported spans
const ServiceName = "crm-api"

// Shutdown flushes and stops the tracer provider
type Shutdown func(context.Context) error

// Init configures an OTLP HTTP exporter when OTEL_EXPORTER_OTLP_ENDPOINT is
// set. Without it the global provider stays a no-op. OTEL_TRACES_SAMPLE_RATIO
// (0..1, default 1) sets the parent-based sampling ratio.
func Init(ctx context.Context, logger *slog.Logger, environment string) (Shutdown, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		logger.Info("tracing disabled: OTEL_EXPORTER_OTLP_ENDPOINT not set")
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(ServiceName),
			semconv.DeploymentEnvironment(environment),
		),
	)
	if err != nil {
		return nil, err
	}

	ratio := SampleRatio(os.Getenv("OTEL_TRACES_SAMPLE_RATIO"))
	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(ratio))),
	)
	otel.SetTracerProvider(tp)
	logger.Info("tracing initialized",
		slog.String("endpoint", endpoint),
		slog.Float64("sample_ratio", ratio),
	)
	return tp.Shutdown, nil
}

// SampleRatio parses a ratio in [0,1]; anything else samples everything
func SampleRatio(v string) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > 1 {
		return 1
	}
	return f
}

// HTTPHandler wraps h so every request opens a server span named after its method and path
func HTTPHandler(h http.Handler) http.Handler {
	return otelhttp.NewHandler(h, ServiceName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
