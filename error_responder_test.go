package appkit_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/appkit-go/appkit"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// serveStack runs a handler through the full middleware stack the app factory installs:
// trace binding, error responding, access logging.
func serveStack(
	t *testing.T,
	reg *appkit.Registry,
	exposeDetail bool,
	maxLen int,
	h appkit.HandlerFunc,
	req *http.Request,
) (*httptest.ResponseRecorder, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)

	wrapped := appkit.Chain(h,
		appkit.WithTrace(zap.New(core)),
		appkit.ErrorResponder(reg, exposeDetail),
		appkit.AccessLog(maxLen),
	)

	rec := httptest.NewRecorder()
	appkit.ToStd(wrapped, -1, appkit.NewTestLogger(t)).ServeHTTP(rec, req)

	return rec, logs
}

func TestErrorResponderRegisteredScenario(t *testing.T) {
	reg := appkit.NewRegistry()
	appkit.RegisterAs[*InvalidAccessTokenError](reg, appkit.ErrorInfo{
		Status: http.StatusUnauthorized, Message: "token expired", Level: zapcore.WarnLevel,
	})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	rec, logs := serveStack(t, reg, false, 0, func(context.Context, appkit.ResponseWriter, *http.Request) error {
		return &InvalidAccessTokenError{Token: "abc"}
	}, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	require.Equal(t, "token expired", gjson.Get(body, "message").String())
	require.NotEmpty(t, gjson.Get(body, "trace_id").String())
	require.Equal(t, gjson.Get(body, "trace_id").String(), rec.Header().Get(appkit.TraceHeader))

	warnings := logs.FilterMessage("token expired")
	require.Equal(t, 1, warnings.Len(), "exactly one log entry per handled error")
	require.Equal(t, zapcore.WarnLevel, warnings.All()[0].Level)

	fields := warnings.All()[0].ContextMap()
	require.Equal(t, "/private", fields["path"])
	require.NotEmpty(t, fields["trace_id"])
}

func TestErrorResponderUnregisteredFallsBack(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec, logs := serveStack(t, appkit.NewRegistry(), false, 0, func(context.Context, appkit.ResponseWriter, *http.Request) error {
		return errors.New("wat")
	}, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "internal server error", gjson.Get(rec.Body.String(), "message").String())
	require.Equal(t, 1, logs.FilterMessage("internal server error").Len())
}

func TestErrorResponderDiscardsPartialBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/partial", nil)
	rec, _ := serveStack(t, appkit.NewRegistry(), false, 0, func(_ context.Context, w appkit.ResponseWriter, _ *http.Request) error {
		w.Header().Set("X-Partial", "yes")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"status": "processing"`)

		return errors.New("failed midway")
	}, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Empty(t, rec.Header().Get("X-Partial"))
	require.True(t, gjson.Valid(rec.Body.String()), "partial body fully replaced")
}

func TestErrorResponderStageGatesDetail(t *testing.T) {
	cause := errors.New("connection refused to db-1.internal")

	req := httptest.NewRequest(http.MethodGet, "/d", nil)
	rec, logs := serveStack(t, appkit.NewRegistry(), true, 0, func(context.Context, appkit.ResponseWriter, *http.Request) error {
		return cause
	}, req)
	require.Contains(t, gjson.Get(rec.Body.String(), "detail").String(), "connection refused")
	entry := logs.FilterMessage("internal server error").All()[0]
	require.Contains(t, entry.ContextMap(), "error")

	req = httptest.NewRequest(http.MethodGet, "/d", nil)
	rec, logs = serveStack(t, appkit.NewRegistry(), false, 0, func(context.Context, appkit.ResponseWriter, *http.Request) error {
		return cause
	}, req)
	require.False(t, gjson.Get(rec.Body.String(), "detail").Exists(), "prod responses stay opaque")
	entry = logs.FilterMessage("internal server error").All()[0]
	require.NotContains(t, entry.ContextMap(), "error")
}

func TestErrorResponderLogsAtRegisteredLevel(t *testing.T) {
	reg := appkit.NewRegistry()
	reg.RegisterIs(errSentinel, appkit.ErrorInfo{
		Status: http.StatusConflict, Message: "already exists", Level: zapcore.DebugLevel,
	})

	req := httptest.NewRequest(http.MethodPost, "/things", nil)
	rec, logs := serveStack(t, reg, false, 0, func(context.Context, appkit.ResponseWriter, *http.Request) error {
		return errSentinel
	}, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	entries := logs.FilterMessage("already exists").All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.DebugLevel, entries[0].Level)
}

var errSentinel = errors.New("duplicate thing")
