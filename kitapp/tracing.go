package kitapp

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx"
)

// NewTracerProvider creates the OpenTelemetry TracerProvider. Supported exporters via
// APP_TRACE_EXPORTER: "none" (default) and "stdout". Shutdown is handled automatically via
// fx.Lifecycle.
func NewTracerProvider(lc fx.Lifecycle, conf Config) (trace.TracerProvider, error) {
	switch conf.TraceExporter {
	case "", "none":
		return noop.NewTracerProvider(), nil
	case "stdout":
	default:
		return nil, errors.Newf("unsupported trace exporter: %q (supported: none, stdout)", conf.TraceExporter)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create stdout exporter")
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(conf.ServiceName),
		semconv.ServiceVersion(conf.Version),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
	)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})

	return tp, nil
}

// NewPropagator creates the W3C TraceContext + Baggage composite propagator.
func NewPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}

// withTracing wraps the handler with otelhttp for automatic span creation. Requests to
// excludePaths are not traced. The TracerProvider and Propagator are explicitly injected
// to avoid global state.
func withTracing(tp trace.TracerProvider, prop propagation.TextMapPropagator, serviceName string, excludePaths ...string) func(http.Handler) http.Handler {
	excludeSet := make(map[string]struct{}, len(excludePaths))
	for _, p := range excludePaths {
		excludeSet[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, serviceName,
			otelhttp.WithTracerProvider(tp),
			otelhttp.WithPropagators(prop),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
			otelhttp.WithFilter(func(r *http.Request) bool {
				_, excluded := excludeSet[r.URL.Path]
				return !excluded
			}),
		)
	}
}
