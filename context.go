package appkit

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TraceHeader carries the trace identifier on requests and responses.
const TraceHeader = "X-Trace-Id"

// ctxKey is the key type for context values.
type ctxKey int

const (
	ctxKeyLogger ctxKey = iota
	ctxKeyTraceID
)

// WithTrace returns middleware that gives every request a trace identifier and binds a
// trace-correlated logger into the request context. The identifier is taken from the
// inbound X-Trace-Id header when present, then from an active OpenTelemetry span, and is
// generated otherwise. It is echoed on the response so callers can correlate.
//
// The binding is scoped to the request's context, so concurrent requests never observe
// each other's identifiers.
func WithTrace(base *zap.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, w ResponseWriter, r *http.Request) error {
			id := r.Header.Get(TraceHeader)
			if id == "" {
				if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
					id = sc.TraceID().String()
				} else {
					id = uuid.NewString()
				}
			}

			w.Header().Set(TraceHeader, id)

			ctx = WithTraceID(ctx, id)
			ctx = WithLogger(ctx, base.With(zap.String("trace_id", id)))

			return next.ServeAppHTTP(ctx, w, r.WithContext(ctx))
		})
	}
}

// WithTraceID binds a trace identifier into the context, replacing any earlier binding.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyTraceID, id)
}

// WithLogger binds a logger into the context, replacing any earlier binding.
func WithLogger(ctx context.Context, logs *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKeyLogger, logs)
}

// Log returns the trace-correlated logger bound by [WithTrace]. Outside of a request it
// returns a no-op logger rather than failing: logging must never take a request down.
func Log(ctx context.Context) *zap.Logger {
	logs, ok := ctx.Value(ctxKeyLogger).(*zap.Logger)
	if !ok {
		return zap.NewNop()
	}

	return logs
}

// TraceID returns the request's trace identifier, or the empty string outside a request.
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyTraceID).(string)
	return id
}
