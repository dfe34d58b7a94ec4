package appkit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// errorBody is the wire format of an error response.
type errorBody struct {
	Message string `json:"message"`
	TraceID string `json:"trace_id"`
	Detail  string `json:"detail,omitempty"`
}

// ErrorResponder returns middleware that converts handler errors into JSON error responses.
//
// The registry resolves the error to its registered status, message and severity; every
// handled error is logged exactly once at that severity with the request's trace id, method
// and path. When exposeDetail is set (dev and staging stages) the log entry carries the
// full error chain and the body an extra detail field; production responses stay opaque.
//
// The buffered response is reset first, so whatever the handler wrote before failing is
// discarded. This middleware never fails itself: if the JSON body cannot be rendered it
// degrades to a minimal plain-text 500.
func ErrorResponder(reg *Registry, exposeDetail bool) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, w ResponseWriter, r *http.Request) error {
			err := next.ServeAppHTTP(ctx, w, r)
			if err == nil {
				return nil
			}

			info := reg.Lookup(err)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			}
			if exposeDetail {
				fields = append(fields,
					zap.Error(err),
					zap.String("verbose", fmt.Sprintf("%+v", err)))
			}

			if entry := Log(ctx).Check(info.Level, info.Message); entry != nil {
				entry.Write(fields...)
			}

			w.Reset()
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set(TraceHeader, TraceID(ctx))
			w.WriteHeader(info.Status)

			body := errorBody{Message: info.Message, TraceID: TraceID(ctx)}
			if exposeDetail {
				body.Detail = err.Error()
			}

			if encErr := json.NewEncoder(w).Encode(body); encErr != nil {
				w.Reset()
				http.Error(w,
					http.StatusText(http.StatusInternalServerError),
					http.StatusInternalServerError)
			}

			return nil
		})
	}
}
