package appkit

import (
	"context"
	"net/http"
)

// ResponseWriter implements http.ResponseWriter but the underlying bytes are buffered. This allows
// middleware to reset the writer and formulate a completely new response, which is how the error
// responder replaces a half-written body with a clean JSON error.
type ResponseWriter interface {
	http.ResponseWriter

	// Reset discards everything written so far: body, headers and status code.
	Reset()
	// Free returns the underlying buffer to the pool. Called by the mux after serving.
	Free()
	// FlushBuffer writes the buffered response to the underlying writer.
	FlushBuffer() error
	// Status returns the status code written so far, or 0 if none was written.
	Status() int
	// Buffered returns the bytes buffered so far.
	Buffered() []byte
}

// Handler mirrors http.Handler but it writes to a buffered response and returns an error instead
// of handling it inline.
type Handler interface {
	ServeAppHTTP(ctx context.Context, w ResponseWriter, r *http.Request) error
}

// HandlerFunc allows casting a function to an implementation of [Handler].
type HandlerFunc func(context.Context, ResponseWriter, *http.Request) error

// ServeAppHTTP implements the [Handler] interface.
func (f HandlerFunc) ServeAppHTTP(ctx context.Context, w ResponseWriter, r *http.Request) error {
	return f(ctx, w, r)
}

// ToStd converts a handler into a standard library http.Handler. The implementation creates a
// buffered response writer and flushes it implicitly after serving the request. An error that
// reaches this point was not turned into a response by any middleware, so the buffer is reset
// and a plain 500 is rendered: the client never ends up with a white screen.
func ToStd(h Handler, bufLimit int, logs Logger) http.Handler {
	return http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		bresp := NewResponseWriter(resp, bufLimit)
		defer bresp.Free()

		if err := h.ServeAppHTTP(req.Context(), bresp, req); err != nil {
			logs.LogUnhandledServeError(err)
			bresp.Reset()

			http.Error(resp,
				http.StatusText(http.StatusInternalServerError),
				http.StatusInternalServerError)

			return
		}

		if err := bresp.FlushBuffer(); err != nil {
			logs.LogImplicitFlushError(err)
		}
	})
}
