package kitapp

import (
	"net/http"

	"github.com/appkit-go/appkit"
	"github.com/carlmjohnson/requests"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// traceHeaderTransport copies the request's trace identifier onto outbound calls so
// downstream services log under the same id.
type traceHeaderTransport struct {
	next http.RoundTripper
}

func (t traceHeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if id := appkit.TraceID(req.Context()); id != "" && req.Header.Get(appkit.TraceHeader) == "" {
		req = req.Clone(req.Context())
		req.Header.Set(appkit.TraceHeader, id)
	}

	return t.next.RoundTrip(req)
}

// NewHTTPTransport creates an HTTP RoundTripper instrumented with OpenTelemetry tracing
// and trace-id propagation. The TracerProvider and Propagator are explicitly injected to
// avoid global state.
func NewHTTPTransport(tp trace.TracerProvider, prop propagation.TextMapPropagator) http.RoundTripper {
	return traceHeaderTransport{next: otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithTracerProvider(tp),
		otelhttp.WithPropagators(prop),
	)}
}

// NewHTTPClient creates an *http.Client that uses the instrumented transport. Outbound
// requests made with the request context automatically create child spans and carry the
// trace id.
func NewHTTPClient(t http.RoundTripper) *http.Client {
	return &http.Client{Transport: t}
}

// NewRequestBuilder creates a base [requests.Builder] with the instrumented transport for
// fluent downstream calls:
//
//	err := kitapp.NewRequestBuilder(transport).
//	    BaseURL(upstream).
//	    Path("/v1/notify").
//	    BodyJSON(&payload).
//	    Fetch(ctx)
func NewRequestBuilder(t http.RoundTripper) *requests.Builder {
	return requests.New().Transport(t)
}
