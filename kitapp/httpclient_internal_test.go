package kitapp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/appkit-go/appkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type captureRoundTripper struct {
	req *http.Request
}

func (c *captureRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	c.req = req
	return httptest.NewRecorder().Result(), nil
}

func TestTraceHeaderTransportPropagates(t *testing.T) {
	capture := &captureRoundTripper{}
	transport := traceHeaderTransport{next: capture}

	req := httptest.NewRequest(http.MethodGet, "http://upstream.local/v1/notify", nil)
	req = req.WithContext(appkit.WithTraceID(req.Context(), "trace-123"))

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "trace-123", capture.req.Header.Get(appkit.TraceHeader))
}

func TestTraceHeaderTransportKeepsExplicitHeader(t *testing.T) {
	capture := &captureRoundTripper{}
	transport := traceHeaderTransport{next: capture}

	req := httptest.NewRequest(http.MethodGet, "http://upstream.local/", nil)
	req = req.WithContext(appkit.WithTraceID(req.Context(), "from-context"))
	req.Header.Set(appkit.TraceHeader, "caller-set")

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "caller-set", capture.req.Header.Get(appkit.TraceHeader))
}

func TestTraceHeaderTransportNoTrace(t *testing.T) {
	capture := &captureRoundTripper{}
	transport := traceHeaderTransport{next: capture}

	req := httptest.NewRequest(http.MethodGet, "http://upstream.local/", nil)

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Empty(t, capture.req.Header.Get(appkit.TraceHeader))
}

func TestNewRequestBuilder(t *testing.T) {
	transport := NewHTTPTransport(noop.NewTracerProvider(), NewPropagator())
	require.NotNil(t, NewRequestBuilder(transport))
	require.NotNil(t, NewHTTPClient(transport))
}
