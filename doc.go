// Package appkit provides buffered HTTP response handling with error-returning handlers,
// centralized error-to-response mapping, and per-request trace logging.
//
// # Overview
//
// appkit extends the standard library's HTTP handling with three building blocks:
// buffered response writers that allow complete response rewriting, handlers that return
// errors instead of handling them inline, and a registry that maps error classes to the
// status, message and log severity of the response they become.
//
// A minimal example:
//
//	mux := appkit.NewServeMux()
//	mux.HandleFunc("GET /items/{id}", func(ctx context.Context, w appkit.ResponseWriter, r *http.Request) error {
//	    item, err := store.Get(r.PathValue("id"))
//	    if err != nil {
//	        return appkit.NewError(appkit.CodeNotFound, err)
//	    }
//	    return json.NewEncoder(w).Encode(item)
//	})
//
// # Handler Signature
//
// appkit handlers differ from standard http.Handlers in two ways: they write to a
// [ResponseWriter] that buffers output, and they return an error that triggers automatic
// response handling:
//
//	func(ctx context.Context, w appkit.ResponseWriter, r *http.Request) error
//
// # Buffered Response Writer
//
// All writes are held in memory until the handler returns successfully. This enables
// complete response replacement when errors occur mid-handler, header modification after
// initial writes, and clean error responses without partial content. [ResponseWriter.Reset]
// clears the buffer, headers and status for a fresh response; [ResponseWriter.FlushBuffer]
// writes the buffered content out; [ResponseWriter.Free] returns the buffer to a pool
// (called automatically by the mux).
//
// # Error Handling
//
// The [ErrorResponder] middleware intercepts any error a handler returns, resolves it
// through a [Registry], logs it exactly once at the registered severity, and renders a
// JSON body of the shape {"message": ..., "trace_id": ...} with the registered status
// code. Errors without a registration fall back to a generic 500. Registration happens
// before the server starts serving:
//
//	reg := appkit.NewRegistry()
//	appkit.RegisterAs[*TokenExpiredError](reg, appkit.ErrorInfo{
//	    Status:  http.StatusUnauthorized,
//	    Message: "token expired",
//	    Level:   zapcore.WarnLevel,
//	})
//
// Ad-hoc status codes do not need a registration; return an [*Error] created with
// [NewError] and the responder uses its code directly.
//
// # Request Logging
//
// [WithTrace] assigns every request a trace identifier (propagated from the X-Trace-Id
// header or generated) and binds a trace-correlated zap logger retrievable via [Log].
// [AccessLog] writes one request line and at most one response line per request, with
// logged bodies capped at a configurable length.
//
// The kitapp subpackage composes all of the above into a runnable application with
// environment-driven configuration, CORS, health checking, metrics and graceful shutdown.
package appkit
